package adapters

import (
	"github.com/de-tools/db-custodian/pkg/models/api"
	"github.com/de-tools/db-custodian/pkg/models/domain"
)

func MapOutcomeDomainToApi(o domain.Outcome) api.Outcome {
	return api.Outcome{
		Database:      o.Database,
		CurrentSizeMB: o.CurrentSizeMB,
		MaxSizeMB:     o.MaxSizeMB,
		TargetSizeMB:  o.TargetSizeMB,
		Status:        string(o.Status),
		Message:       o.String(),
		Error:         o.Err,
	}
}

func MapRunReportDomainToApi(r domain.RunReport) api.RunReport {
	res := api.RunReport{
		Id:         r.ID,
		Profile:    r.Profile,
		Engine:     string(r.Engine),
		Threshold:  r.Threshold,
		Table:      r.Table,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Failed:     r.Failed(),
		Remediated: r.CountStatus(domain.OutcomeRemediated),
		Outcomes:   make([]api.Outcome, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		res.Outcomes = append(res.Outcomes, MapOutcomeDomainToApi(o))
	}
	return res
}

func MapProfileDomainToApi(p domain.Profile) api.ProfileSummary {
	return api.ProfileSummary{
		Name:   p.Name,
		Engine: string(p.Engine),
		Host:   p.Host,
	}
}
