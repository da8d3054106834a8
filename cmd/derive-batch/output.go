package main

import (
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/extract"
)

type outputTable struct {
	name    string
	columns []string
	rows    [][]string
	empty   bool
}

func outputTables(result models.RunResult) []outputTable {
	return []outputTable{
		enhancedTable(result.Enhanced),
		demographicsTable(result.Demographics),
		practiceTable(result.Practice),
		biomarkersTable(result.Biomarkers),
		ecogTable(result.Ecog),
	}
}

func enhancedTable(rows []models.EnhancedRow) outputTable {
	table := outputTable{
		name: "enhanced.csv",
		columns: []string{
			"PatientID", "GroupStage_mod", "TStage_mod", "NStage_mod", "MStage_mod",
			"GleasonScore_mod", "Histology", "days_diagnosis_to_met", "met_diagnosis_year",
			"IsCRPC", "days_diagnosis_to_crpc", "PSADiagnosis", "PSAMetDiagnosis",
			"psa_doubling", "psa_velocity",
		},
		empty: rows == nil,
	}
	for _, r := range rows {
		table.rows = append(table.rows, []string{
			r.PatientID,
			extract.FormatString(r.GroupStage),
			extract.FormatString(r.TStage),
			extract.FormatString(r.NStage),
			extract.FormatString(r.MStage),
			extract.FormatString(r.GleasonGroup),
			extract.FormatString(r.Histology),
			extract.FormatInt(r.DaysDiagnosisToMet),
			extract.FormatInt(r.MetDiagnosisYear),
			extract.FormatInt(r.IsCRPC),
			extract.FormatInt(r.DaysDiagnosisToCRPC),
			extract.FormatFloat(r.PSADiagnosis),
			extract.FormatFloat(r.PSAMetDiagnosis),
			extract.FormatFloat(r.PSADoubling),
			extract.FormatFloat(r.PSAVelocity),
		})
	}
	return table
}

func demographicsTable(rows []models.DemographicsRow) outputTable {
	table := outputTable{
		name:    "demographics.csv",
		columns: []string{"PatientID", "Race", "Ethnicity", "age", "region"},
		empty:   rows == nil,
	}
	for _, r := range rows {
		table.rows = append(table.rows, []string{
			r.PatientID,
			extract.FormatString(r.Race),
			extract.FormatString(r.Ethnicity),
			extract.FormatInt(r.Age),
			extract.FormatString(r.Region),
		})
	}
	return table
}

func practiceTable(rows []models.PracticeRow) outputTable {
	table := outputTable{
		name:    "practice.csv",
		columns: []string{"PatientID", "PracticeType_mod"},
		empty:   rows == nil,
	}
	for _, r := range rows {
		table.rows = append(table.rows, []string{
			r.PatientID,
			extract.FormatString(r.PracticeType),
		})
	}
	return table
}

func biomarkersTable(rows []models.BiomarkerRow) outputTable {
	table := outputTable{
		name:    "biomarkers.csv",
		columns: []string{"PatientID", "BRCA_status"},
		empty:   rows == nil,
	}
	for _, r := range rows {
		table.rows = append(table.rows, []string{
			r.PatientID,
			extract.FormatString(r.BRCAStatus),
		})
	}
	return table
}

func ecogTable(rows []models.EcogRow) outputTable {
	table := outputTable{
		name:    "ecog.csv",
		columns: []string{"PatientID", "ecog_index", "ecog_newly_gte2"},
		empty:   rows == nil,
	}
	for _, r := range rows {
		table.rows = append(table.rows, []string{
			r.PatientID,
			extract.FormatInt(r.EcogIndex),
			extract.FormatInt(r.EcogNewlyGte2),
		})
	}
	return table
}
