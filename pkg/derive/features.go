package derive

import (
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/recode"
)

// FlattenFeatures merges every per-source row into one feature map per
// patient for materialization. Only resolved values are included;
// missing features are represented by absence, mirroring the nil
// markers in the source tables. For patients that carry duplicate rows
// within a source, the last row wins here; the flat CSV outputs keep
// all rows.
func FlattenFeatures(result models.RunResult) map[string]map[string]interface{} {
	features := make(map[string]map[string]interface{})

	patient := func(id string) map[string]interface{} {
		if features[id] == nil {
			features[id] = make(map[string]interface{})
		}
		return features[id]
	}

	for _, row := range result.Enhanced {
		f := patient(row.PatientID)
		putString(f, "group_stage", row.GroupStage)
		putString(f, "t_stage", row.TStage)
		putString(f, "n_stage", row.NStage)
		putString(f, "m_stage", row.MStage)
		putString(f, "gleason_group", row.GleasonGroup)
		// Feature consumers sort and threshold the ordered categories,
		// so the categorical value ships with its ordinal rank. Unknown
		// ranks nowhere and gets no rank feature.
		putRank(f, "group_stage_rank", row.GroupStage, recode.GroupStageOrder)
		putRank(f, "t_stage_rank", row.TStage, recode.TStageOrder)
		putRank(f, "gleason_group_rank", row.GleasonGroup, recode.GleasonOrder)
		putString(f, "histology", row.Histology)
		putInt(f, "days_diagnosis_to_met", row.DaysDiagnosisToMet)
		putInt(f, "met_diagnosis_year", row.MetDiagnosisYear)
		putInt(f, "is_crpc", row.IsCRPC)
		putInt(f, "days_diagnosis_to_crpc", row.DaysDiagnosisToCRPC)
		putFloat(f, "psa_diagnosis", row.PSADiagnosis)
		putFloat(f, "psa_met_diagnosis", row.PSAMetDiagnosis)
		putFloat(f, "psa_doubling", row.PSADoubling)
		putFloat(f, "psa_velocity", row.PSAVelocity)
	}
	for _, row := range result.Demographics {
		f := patient(row.PatientID)
		putString(f, "race", row.Race)
		putString(f, "ethnicity", row.Ethnicity)
		putInt(f, "age", row.Age)
		putString(f, "region", row.Region)
	}
	for _, row := range result.Practice {
		putString(patient(row.PatientID), "practice_type", row.PracticeType)
	}
	for _, row := range result.Biomarkers {
		putString(patient(row.PatientID), "brca_status", row.BRCAStatus)
	}
	for _, row := range result.Ecog {
		f := patient(row.PatientID)
		putInt(f, "ecog_index", row.EcogIndex)
		putInt(f, "ecog_newly_gte2", row.EcogNewlyGte2)
	}

	return features
}

func putString(features map[string]interface{}, name string, value *string) {
	if value != nil {
		features[name] = *value
	}
}

func putInt(features map[string]interface{}, name string, value *int) {
	if value != nil {
		features[name] = *value
	}
}

func putFloat(features map[string]interface{}, name string, value *float64) {
	if value != nil {
		features[name] = *value
	}
}

func putRank(features map[string]interface{}, name string, value *string, order []string) {
	if value == nil {
		return
	}
	if rank := recode.Rank(order, *value); rank >= 0 {
		features[name] = rank
	}
}
