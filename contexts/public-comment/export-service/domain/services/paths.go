package services

import (
	"fmt"
	"path"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
)

// ArtifactFileName follows {type}_export_{YYYY-MM-DD}.{ext}.
func ArtifactFileName(jobType entities.JobType, day time.Time) string {
	return fmt.Sprintf("%s_export_%s.%s", jobType, day.UTC().Format(time.DateOnly), jobType.Extension())
}

// ArtifactPath follows {tenant}/{jobId}/{filename}.
func ArtifactPath(tenantID string, jobID string, jobType entities.JobType, day time.Time) string {
	return path.Join(safeSegment(tenantID), safeSegment(jobID), ArtifactFileName(jobType, day))
}

// ArchiveEntryPath places an attachment under tenant/docket/comment.
func ArchiveEntryPath(tenantID string, docketID string, commentID string, fileName string) string {
	return path.Join(safeSegment(tenantID), safeSegment(docketID), safeSegment(commentID), safeSegment(fileName))
}

func safeSegment(value string) string {
	value = strings.TrimSpace(value)
	value = strings.NewReplacer("/", "_", "\\", "_").Replace(value)
	if value == "" || value == "." || value == ".." {
		return "_"
	}
	return value
}
