package httpadapter

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/export-service/application/commands"
	"docketdesk/contexts/public-comment/export-service/application/queries"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
	httptransport "docketdesk/contexts/public-comment/export-service/transport/http"
)

type Handler struct {
	CreateJob   commands.CreateJobUseCase
	DeleteJob   commands.DeleteJobUseCase
	GetJob      queries.GetJobUseCase
	ListJobs    queries.ListJobsUseCase
	DownloadURL queries.DownloadURLUseCase
	Actors      ports.ActorResolver
	Logger      *slog.Logger
}

func (h Handler) resolve(ctx context.Context, tenantID string, userID string) (entities.Actor, error) {
	if h.Actors == nil {
		return entities.Actor{}, domainerrors.ErrDependencyUnavailable
	}
	return h.Actors.ResolveActor(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(userID))
}

func (h Handler) CreateExportHandler(ctx context.Context, tenantID string, userID string, req httptransport.CreateExportRequest) (httptransport.ExportJobResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.ExportJobResponse{}, err
	}
	job, err := h.CreateJob.Execute(ctx, actor, commands.CreateJobCommand{
		Type:     req.Type,
		Filter:   filterFromDTO(req.Filter),
		DocketID: req.DocketID,
	})
	if err != nil {
		return httptransport.ExportJobResponse{}, err
	}
	return httptransport.ExportJobResponse{Status: "success", Data: mapJob(job), Timestamp: nowRFC3339()}, nil
}

func (h Handler) GetExportHandler(ctx context.Context, tenantID string, userID string, jobID string) (httptransport.ExportJobResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.ExportJobResponse{}, err
	}
	job, err := h.GetJob.Execute(ctx, actor, jobID)
	if err != nil {
		return httptransport.ExportJobResponse{}, err
	}
	return httptransport.ExportJobResponse{Status: "success", Data: mapJob(job), Timestamp: nowRFC3339()}, nil
}

func (h Handler) ListExportsHandler(ctx context.Context, tenantID string, userID string, limitRaw string) (httptransport.ExportJobListResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.ExportJobListResponse{}, err
	}
	limit := 0
	if parsed, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil {
		limit = parsed
	}
	items, err := h.ListJobs.Execute(ctx, actor, limit)
	if err != nil {
		return httptransport.ExportJobListResponse{}, err
	}
	resp := httptransport.ExportJobListResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Items = make([]httptransport.ExportJobDTO, 0, len(items))
	for _, item := range items {
		resp.Data.Items = append(resp.Data.Items, mapJob(item))
	}
	resp.Data.Limit = queries.NormalizeLimit(limit)
	return resp, nil
}

func (h Handler) DeleteExportHandler(ctx context.Context, tenantID string, userID string, jobID string) (httptransport.DeleteExportResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.DeleteExportResponse{}, err
	}
	if err := h.DeleteJob.Execute(ctx, actor, jobID); err != nil {
		return httptransport.DeleteExportResponse{}, err
	}
	resp := httptransport.DeleteExportResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.JobID = strings.TrimSpace(jobID)
	resp.Data.Deleted = true
	return resp, nil
}

func (h Handler) DownloadURLHandler(ctx context.Context, tenantID string, userID string, jobID string) (httptransport.DownloadURLResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.DownloadURLResponse{}, err
	}
	result, err := h.DownloadURL.Execute(ctx, actor, jobID)
	if err != nil {
		return httptransport.DownloadURLResponse{}, err
	}
	return httptransport.DownloadURLResponse{
		Status: "success",
		Data: httptransport.DownloadURLDTO{
			URL:       result.URL,
			ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
			FileName:  result.FileName,
		},
		Timestamp: nowRFC3339(),
	}, nil
}

func filterFromDTO(dto httptransport.ExportFilter) entities.FilterSpec {
	return entities.FilterSpec{
		Statuses:           dto.Statuses,
		IncludeAllStatuses: dto.IncludeAllStatuses,
		SubmittedFrom:      dto.SubmittedFrom,
		SubmittedTo:        dto.SubmittedTo,
		DocketIDs:          dto.DocketIDs,
		ContentContains:    dto.ContentContains,
		IncludeAttachments: dto.IncludeAttachments,
		MIMETypes:          dto.MIMETypes,
		MaxAttachmentBytes: dto.MaxAttachmentBytes,
	}
}

func mapJob(job entities.Job) httptransport.ExportJobDTO {
	return httptransport.ExportJobDTO{
		JobID:    job.JobID,
		Type:     string(job.Type),
		Status:   string(job.Status),
		Progress: job.Progress,
		Filter: httptransport.ExportFilter{
			Statuses:           job.Filter.Statuses,
			IncludeAllStatuses: job.Filter.IncludeAllStatuses,
			SubmittedFrom:      job.Filter.SubmittedFrom,
			SubmittedTo:        job.Filter.SubmittedTo,
			DocketIDs:          job.Filter.DocketIDs,
			ContentContains:    job.Filter.ContentContains,
			IncludeAttachments: job.Filter.IncludeAttachments,
			MIMETypes:          job.Filter.MIMETypes,
			MaxAttachmentBytes: job.Filter.MaxAttachmentBytes,
		},
		DocketID:     job.DocketID,
		ArtifactSize: job.ArtifactSize,
		ErrorMessage: job.ErrorMessage,
		CreatedBy:    job.CreatedBy,
		CreatedAt:    job.CreatedAt.UTC().Format(time.RFC3339),
		StartedAt:    formatOptionalTime(job.StartedAt),
		CompletedAt:  formatOptionalTime(job.CompletedAt),
		ExpiresAt:    formatOptionalTime(job.ExpiresAt),
	}
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
