package builder

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// ReportBuilder builds dto.Report graphs. Reporter and reported are both
// users and are fetched together.
type ReportBuilder struct {
	base
}

// NewReportBuilder is the transient provider for ReportBuilder.
func NewReportBuilder(i do.Injector) (*ReportBuilder, error) {
	b, err := newBase(i)
	return &ReportBuilder{base: b}, err
}

// Build implements Builder.
func (b *ReportBuilder) Build(ctx context.Context, reports []*domain.Report, fields []string) ([]*dto.Report, error) {
	split, has := b.split(domain.TypeReport, fields)

	out := make([]*dto.Report, len(reports))
	for i, r := range reports {
		d := &dto.Report{}
		if has["id"] {
			d.ID = ptr(r.ID)
		}
		if has["reporterId"] {
			d.ReporterID = ptr(r.ReporterID)
		}
		if has["reportedId"] {
			d.ReportedID = ptr(r.ReportedID)
		}
		if has["type"] {
			d.Type = ptr(r.Type)
		}
		if has["reason"] {
			d.Reason = ptr(r.Reason)
		}
		if has["status"] {
			d.Status = ptr(r.Status)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(r.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(r.UpdatedAt)
		}
		out[i] = d
	}

	reporterFields, wantReporter := split.Foreign["reporter"]
	reportedFields, wantReported := split.Foreign["reported"]
	if !wantReporter && !wantReported {
		return out, nil
	}

	reporters, reported, err := dual[domain.User, dto.User, *UserBuilder](ctx, &b.base, b.deps.Queries.Users,
		pair{
			ids:       keys(reports, func(r *domain.Report) []string { return one(r.ReporterID) }),
			fields:    reporterFields,
			requested: wantReporter,
		},
		pair{
			ids:       keys(reports, func(r *domain.Report) []string { return one(r.ReportedID) }),
			fields:    reportedFields,
			requested: wantReported,
		})
	if err != nil {
		return nil, err
	}
	for i, r := range reports {
		out[i].Reporter = reporters[r.ReporterID]
		out[i].Reported = reported[r.ReportedID]
	}
	return out, nil
}
