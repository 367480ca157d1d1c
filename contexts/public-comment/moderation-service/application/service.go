package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"path"
	"sort"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	"docketdesk/contexts/public-comment/moderation-service/domain/services"
	"docketdesk/contexts/public-comment/moderation-service/ports"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

const (
	maxCommentLength     = 20000
	maxAttachments       = 10
	maxAttachmentBytes   = 25 << 20
	defaultListLimit     = 20
	maxListLimit         = 100
	maxBulkSelection     = 500
	defaultPreviewURLTTL = 24 * time.Hour
	notifyTimeout        = 30 * time.Second
	sourceService        = "moderation-service"
)

type Service struct {
	Repo           ports.Repository
	Policy         ports.AccessPolicy
	Idempotency    ports.IdempotencyStore
	Blobs          ports.BlobStore
	Notifier       ports.Notifier
	Events         ports.EventPublisher
	Clock          ports.Clock
	IDs            ports.IDGenerator
	IdempotencyTTL time.Duration
	PreviewURLTTL  time.Duration
	Logger         *slog.Logger
}

func (s Service) CreateDocket(ctx context.Context, actor entities.Actor, input CreateDocketInput) (entities.Docket, error) {
	if err := s.authorize(actor, entities.PermissionDocketsManage); err != nil {
		return entities.Docket{}, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Reference = strings.TrimSpace(input.Reference)
	if input.Title == "" || input.Reference == "" {
		return entities.Docket{}, domainerrors.ErrInvalidRequest
	}
	if input.OpensAt != nil && input.ClosesAt != nil && !input.ClosesAt.After(*input.OpensAt) {
		return entities.Docket{}, fmt.Errorf("%w: closes_at must be after opens_at", domainerrors.ErrValidation)
	}
	id, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Docket{}, err
	}
	docket, err := s.Repo.CreateDocket(ctx, entities.Docket{
		DocketID:  id,
		TenantID:  actor.TenantID,
		Title:     input.Title,
		Reference: input.Reference,
		Status:    entities.DocketStatusOpen,
		OpensAt:   utcPtr(input.OpensAt),
		ClosesAt:  utcPtr(input.ClosesAt),
		CreatedBy: actor.ActorID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return entities.Docket{}, err
	}
	ResolveLogger(s.Logger).Info("docket created",
		"event", "moderation_docket_created",
		"module", "public-comment/moderation-service",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"docket_id", docket.DocketID,
		"actor_id", actor.ActorID,
	)
	return docket, nil
}

func (s Service) ListDockets(ctx context.Context, actor entities.Actor) ([]entities.Docket, error) {
	if err := s.authorize(actor, entities.PermissionCommentsView); err != nil {
		return nil, err
	}
	return s.Repo.ListDockets(ctx, actor.TenantID)
}

// SubmitComment is the public intake path. It needs no actor: the docket
// being open is the only gate.
func (s Service) SubmitComment(ctx context.Context, tenantID string, docketID string, input SubmitCommentInput) (entities.Comment, error) {
	tenantID = strings.TrimSpace(tenantID)
	docketID = strings.TrimSpace(docketID)
	if tenantID == "" || docketID == "" {
		return entities.Comment{}, domainerrors.ErrInvalidRequest
	}
	if err := validateSubmission(&input); err != nil {
		return entities.Comment{}, err
	}
	docket, err := s.Repo.GetDocket(ctx, tenantID, docketID)
	if err != nil {
		return entities.Comment{}, err
	}
	now := s.now()
	if !docket.AcceptsComments(now) {
		return entities.Comment{}, domainerrors.ErrDocketClosed
	}

	commentID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Comment{}, err
	}
	attachments := make([]entities.Attachment, 0, len(input.Attachments))
	for _, upload := range input.Attachments {
		if s.Blobs == nil {
			return entities.Comment{}, domainerrors.ErrDependencyUnavailable
		}
		attachmentID, err := s.IDs.NewID(ctx)
		if err != nil {
			return entities.Comment{}, err
		}
		storagePath := path.Join(tenantID, "attachments", commentID, attachmentID, upload.FileName)
		if err := s.Blobs.Put(ctx, storagePath, upload.Data, upload.ContentType); err != nil {
			return entities.Comment{}, fmt.Errorf("%w: store attachment: %w", domainerrors.ErrTransientStore, err)
		}
		attachments = append(attachments, entities.Attachment{
			AttachmentID: attachmentID,
			CommentID:    commentID,
			FileName:     upload.FileName,
			ContentType:  upload.ContentType,
			SizeBytes:    int64(len(upload.Data)),
			StoragePath:  storagePath,
		})
	}

	comment, err := s.Repo.CreateComment(ctx, entities.Comment{
		CommentID:             commentID,
		TenantID:              tenantID,
		DocketID:              docket.DocketID,
		CommenterName:         input.CommenterName,
		CommenterEmail:        input.CommenterEmail,
		CommenterOrganization: input.CommenterOrganization,
		Content:               input.Content,
		Status:                entities.CommentStatusPending,
		Attachments:           attachments,
		SubmittedAt:           now,
		UpdatedAt:             now,
	})
	if err != nil {
		return entities.Comment{}, err
	}

	if comment.CommenterEmail != "" {
		s.notifyAsync(ports.Notification{
			Kind:      "comment.received",
			TenantID:  tenantID,
			Recipient: comment.CommenterEmail,
			Subject:   fmt.Sprintf("Your comment on %s was received", docket.Reference),
			Body:      fmt.Sprintf("Thank you for commenting on %q. Your comment %s is awaiting review.", docket.Title, comment.CommentID),
		})
	}
	s.publish(ctx, eventsv1.TopicCommentSubmitted, tenantID, comment.CommentID, eventsv1.CommentSubmitted{
		TenantID:        tenantID,
		DocketID:        comment.DocketID,
		CommentID:       comment.CommentID,
		AttachmentCount: len(comment.Attachments),
	})
	ResolveLogger(s.Logger).Info("public comment submitted",
		"event", "moderation_comment_submitted",
		"module", "public-comment/moderation-service",
		"layer", "application",
		"tenant_id", tenantID,
		"docket_id", comment.DocketID,
		"comment_id", comment.CommentID,
		"attachments", len(comment.Attachments),
	)
	return comment, nil
}

func (s Service) ListComments(ctx context.Context, actor entities.Actor, input ListCommentsInput) ([]entities.Comment, error) {
	if err := s.authorize(actor, entities.PermissionCommentsView); err != nil {
		return nil, err
	}
	filter := ports.CommentFilter{
		TenantID: actor.TenantID,
		DocketID: strings.TrimSpace(input.DocketID),
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, ok := entities.ParseCommentStatus(raw)
		if !ok {
			return nil, domainerrors.ErrInvalidRequest
		}
		filter.Status = status
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListComments(ctx, filter)
}

func (s Service) GetComment(ctx context.Context, actor entities.Actor, commentID string) (entities.Comment, error) {
	if err := s.authorize(actor, entities.PermissionCommentsView); err != nil {
		return entities.Comment{}, err
	}
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return entities.Comment{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetComment(ctx, actor.TenantID, commentID)
}

func (s Service) ListLog(ctx context.Context, actor entities.Actor, commentID string) ([]entities.LogEntry, error) {
	comment, err := s.GetComment(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListLog(ctx, actor.TenantID, comment.CommentID)
}

// Moderate applies one action to one comment. Everything is validated before
// the repository is touched. An audit entry is written only when the caller
// gives a reason.
func (s Service) Moderate(ctx context.Context, actor entities.Actor, idempotencyKey string, input ModerateInput) (ModerationResult, error) {
	input.CommentID = strings.TrimSpace(input.CommentID)
	input.Reason = strings.TrimSpace(input.Reason)
	action, ok := entities.ParseAction(input.Action)
	if !ok {
		return ModerationResult{}, domainerrors.ErrInvalidAction
	}
	if input.CommentID == "" {
		return ModerationResult{}, domainerrors.ErrInvalidRequest
	}
	permission, err := services.RequiredPermission(action)
	if err != nil {
		return ModerationResult{}, err
	}
	if err := s.authorize(actor, permission); err != nil {
		return ModerationResult{}, err
	}

	var output ModerationResult
	requestHash := hashStrings(actor.TenantID, actor.ActorID, input.CommentID, string(action), input.Reason)
	err = s.runIdempotent(ctx, scopedKey(actor, idempotencyKey), requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &output) },
		func() ([]byte, error) {
			result, err := s.moderateOne(ctx, actor, input.CommentID, action, input.Reason)
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
	)
	return output, err
}

func (s Service) moderateOne(ctx context.Context, actor entities.Actor, commentID string, action entities.Action, reason string) (ModerationResult, error) {
	comment, err := s.Repo.GetComment(ctx, actor.TenantID, commentID)
	if err != nil {
		return ModerationResult{}, err
	}
	next, err := services.NextStatus(comment.Status, action)
	if err != nil {
		return ModerationResult{}, err
	}
	now := s.now()
	transition := ports.Transition{
		TenantID:  actor.TenantID,
		CommentID: comment.CommentID,
		Status:    next,
		UpdatedBy: actor.ActorID,
		UpdatedAt: now,
	}
	if reason != "" {
		entry, err := s.newLogEntry(ctx, actor, comment, action, reason, next, now)
		if err != nil {
			return ModerationResult{}, err
		}
		transition.LogEntry = &entry
	}
	updated, err := s.Repo.ApplyTransition(ctx, transition)
	if err != nil {
		return ModerationResult{}, err
	}

	s.publish(ctx, eventsv1.TopicCommentModerated, actor.TenantID, updated.CommentID, eventsv1.CommentModerated{
		TenantID:       actor.TenantID,
		CommentIDs:     []string{updated.CommentID},
		Action:         string(action),
		ResultingState: string(next),
		ActorID:        actor.ActorID,
	})
	ResolveLogger(s.Logger).Info("comment moderated",
		"event", "moderation_comment_moderated",
		"module", "public-comment/moderation-service",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"comment_id", updated.CommentID,
		"actor_id", actor.ActorID,
		"action", string(action),
		"from_status", string(comment.Status),
		"to_status", string(next),
		"logged", transition.LogEntry != nil,
	)
	return ModerationResult{Comment: updated, LogEntry: transition.LogEntry}, nil
}

// BulkModerate applies the same action to every selected comment. Ids are
// de-duplicated and every comment must accept the transition before anything
// is written.
func (s Service) BulkModerate(ctx context.Context, actor entities.Actor, idempotencyKey string, input BulkModerateInput) (BulkModerationResult, error) {
	input.Reason = strings.TrimSpace(input.Reason)
	action, ok := entities.ParseAction(input.Action)
	if !ok {
		return BulkModerationResult{}, domainerrors.ErrInvalidAction
	}
	ids := dedupeIDs(input.CommentIDs)
	if len(ids) == 0 {
		return BulkModerationResult{}, domainerrors.ErrEmptySelection
	}
	if len(ids) > maxBulkSelection {
		return BulkModerationResult{}, fmt.Errorf("%w: at most %d comments per bulk action", domainerrors.ErrValidation, maxBulkSelection)
	}
	permission, err := services.RequiredPermission(action)
	if err != nil {
		return BulkModerationResult{}, err
	}
	if err := s.authorize(actor, permission); err != nil {
		return BulkModerationResult{}, err
	}

	var output BulkModerationResult
	sortedIDs := append([]string(nil), ids...)
	sort.Strings(sortedIDs)
	requestHash := hashStrings(actor.TenantID, actor.ActorID, strings.Join(sortedIDs, ","), string(action), input.Reason)
	err = s.runIdempotent(ctx, scopedKey(actor, idempotencyKey), requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &output) },
		func() ([]byte, error) {
			result, err := s.moderateMany(ctx, actor, ids, action, input.Reason)
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
	)
	return output, err
}

func (s Service) moderateMany(ctx context.Context, actor entities.Actor, ids []string, action entities.Action, reason string) (BulkModerationResult, error) {
	comments, err := s.Repo.GetComments(ctx, actor.TenantID, ids)
	if err != nil {
		return BulkModerationResult{}, err
	}
	byID := make(map[string]entities.Comment, len(comments))
	for _, comment := range comments {
		byID[comment.CommentID] = comment
	}

	now := s.now()
	var next entities.CommentStatus
	transitions := make([]ports.Transition, 0, len(ids))
	logged := 0
	for _, id := range ids {
		comment, ok := byID[id]
		if !ok {
			return BulkModerationResult{}, fmt.Errorf("%w: %s", domainerrors.ErrCommentNotFound, id)
		}
		resulting, err := services.NextStatus(comment.Status, action)
		if err != nil {
			return BulkModerationResult{}, fmt.Errorf("comment %s: %w", id, err)
		}
		next = resulting
		transition := ports.Transition{
			TenantID:  actor.TenantID,
			CommentID: id,
			Status:    resulting,
			UpdatedBy: actor.ActorID,
			UpdatedAt: now,
		}
		if reason != "" {
			entry, err := s.newLogEntry(ctx, actor, comment, action, reason, resulting, now)
			if err != nil {
				return BulkModerationResult{}, err
			}
			transition.LogEntry = &entry
			logged++
		}
		transitions = append(transitions, transition)
	}

	updated, err := s.Repo.ApplyBulkTransition(ctx, transitions)
	if err != nil {
		return BulkModerationResult{}, err
	}

	s.publish(ctx, eventsv1.TopicCommentModerated, actor.TenantID, actor.TenantID, eventsv1.CommentModerated{
		TenantID:       actor.TenantID,
		CommentIDs:     ids,
		Action:         string(action),
		ResultingState: string(next),
		ActorID:        actor.ActorID,
	})
	ResolveLogger(s.Logger).Info("comments bulk moderated",
		"event", "moderation_bulk_moderated",
		"module", "public-comment/moderation-service",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"actor_id", actor.ActorID,
		"action", string(action),
		"to_status", string(next),
		"count", len(updated),
		"log_entries", logged,
	)
	return BulkModerationResult{
		Comments:    updated,
		LogEntries:  logged,
		Action:      action,
		Status:      next,
		ProcessedAt: now,
	}, nil
}

func (s Service) Stats(ctx context.Context, actor entities.Actor) (entities.Stats, error) {
	if err := s.authorize(actor, entities.PermissionCommentsView); err != nil {
		return entities.Stats{}, err
	}
	comments, err := s.Repo.ListTenantComments(ctx, actor.TenantID)
	if err != nil {
		return entities.Stats{}, err
	}
	return services.ComputeStats(comments), nil
}

// AttachmentPreviewURL mints a fresh signed link on every call.
func (s Service) AttachmentPreviewURL(ctx context.Context, actor entities.Actor, commentID string, attachmentID string) (string, time.Time, error) {
	comment, err := s.GetComment(ctx, actor, commentID)
	if err != nil {
		return "", time.Time{}, err
	}
	attachment, ok := comment.Attachment(strings.TrimSpace(attachmentID))
	if !ok {
		return "", time.Time{}, domainerrors.ErrAttachmentNotFound
	}
	if s.Blobs == nil {
		return "", time.Time{}, domainerrors.ErrDependencyUnavailable
	}
	ttl := s.PreviewURLTTL
	if ttl <= 0 {
		ttl = defaultPreviewURLTTL
	}
	url, err := s.Blobs.SignedURL(ctx, attachment.StoragePath, ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: sign preview url: %w", domainerrors.ErrTransientStore, err)
	}
	return url, s.now().Add(ttl), nil
}

func (s Service) authorize(actor entities.Actor, permission string) error {
	if strings.TrimSpace(actor.TenantID) == "" || strings.TrimSpace(actor.ActorID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	if s.Policy == nil {
		return domainerrors.ErrDependencyUnavailable
	}
	if s.Policy.Authorize(actor.Role, permission) {
		return nil
	}
	ResolveLogger(s.Logger).Warn("moderation permission denied",
		"event", "moderation_permission_denied",
		"module", "public-comment/moderation-service",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"actor_id", actor.ActorID,
		"role", actor.Role,
		"permission", permission,
	)
	return fmt.Errorf("%w: %s", domainerrors.ErrAuthorizationDenied, s.Policy.ExplainDenial(permission, actor.Role))
}

func (s Service) newLogEntry(
	ctx context.Context,
	actor entities.Actor,
	comment entities.Comment,
	action entities.Action,
	reason string,
	resulting entities.CommentStatus,
	now time.Time,
) (entities.LogEntry, error) {
	id, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.LogEntry{}, err
	}
	return entities.LogEntry{
		EntryID:         id,
		TenantID:        actor.TenantID,
		CommentID:       comment.CommentID,
		Action:          action,
		ActorID:         actor.ActorID,
		Reason:          reason,
		PreviousStatus:  comment.Status,
		ResultingStatus: resulting,
		CreatedAt:       now,
	}, nil
}

func (s Service) publish(ctx context.Context, topic string, tenantID string, partitionKey string, data any) {
	if s.Events == nil {
		return
	}
	id, err := s.IDs.NewID(ctx)
	if err == nil {
		var envelope eventsv1.Envelope
		envelope, err = eventsv1.NewEnvelope(id, topic, sourceService, partitionKey, s.now(), data)
		if err == nil {
			err = s.Events.Publish(ctx, topic, envelope)
		}
	}
	if err != nil {
		ResolveLogger(s.Logger).Warn("moderation event publish failed",
			"event", "moderation_event_publish_failed",
			"module", "public-comment/moderation-service",
			"layer", "application",
			"tenant_id", tenantID,
			"topic", topic,
			"error", err.Error(),
		)
	}
}

func (s Service) notifyAsync(notification ports.Notification) {
	if s.Notifier == nil {
		return
	}
	logger := ResolveLogger(s.Logger)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.Notify(ctx, notification); err != nil {
			logger.Warn("notification delivery failed",
				"event", "moderation_notification_failed",
				"module", "public-comment/moderation-service",
				"layer", "application",
				"kind", notification.Kind,
				"tenant_id", notification.TenantID,
				"error", err.Error(),
			)
		}
	}()
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

// runIdempotent executes exec at most once per key. An empty key or a missing
// store runs exec directly.
func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	if key == "" || s.Idempotency == nil {
		payload, err := exec()
		if err != nil {
			return err
		}
		return decode(payload)
	}
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}
	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Debug("moderation idempotent mutation committed",
		"event", "moderation_idempotent_mutation_committed",
		"module", "public-comment/moderation-service",
		"layer", "application",
		"idempotency_key", key,
	)
	return decode(payload)
}

func validateSubmission(input *SubmitCommentInput) error {
	input.CommenterName = strings.TrimSpace(input.CommenterName)
	input.CommenterEmail = strings.ToLower(strings.TrimSpace(input.CommenterEmail))
	input.CommenterOrganization = strings.TrimSpace(input.CommenterOrganization)
	input.Content = strings.TrimSpace(normalizeLineBreaks(input.Content))
	if input.CommenterName == "" || input.Content == "" {
		return domainerrors.ErrInvalidRequest
	}
	if len([]rune(input.Content)) > maxCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", domainerrors.ErrValidation, maxCommentLength)
	}
	if input.CommenterEmail != "" {
		addr, err := mail.ParseAddress(input.CommenterEmail)
		if err != nil || addr.Address != input.CommenterEmail {
			return fmt.Errorf("%w: invalid commenter email", domainerrors.ErrValidation)
		}
	}
	if len(input.Attachments) > maxAttachments {
		return fmt.Errorf("%w: at most %d attachments", domainerrors.ErrValidation, maxAttachments)
	}
	for i := range input.Attachments {
		upload := &input.Attachments[i]
		upload.FileName = path.Base(strings.TrimSpace(upload.FileName))
		upload.ContentType = strings.ToLower(strings.TrimSpace(upload.ContentType))
		if upload.FileName == "" || upload.FileName == "." || upload.FileName == "/" || len(upload.Data) == 0 {
			return fmt.Errorf("%w: attachment %d is empty or unnamed", domainerrors.ErrValidation, i)
		}
		if len(upload.Data) > maxAttachmentBytes {
			return fmt.Errorf("%w: attachment %s is too large", domainerrors.ErrValidation, upload.FileName)
		}
		if upload.ContentType == "" {
			upload.ContentType = "application/octet-stream"
		}
	}
	return nil
}

// lineBreaks folds CRLF and lone CR, as sent by browser textareas, to LF so
// stored text survives the tabular export unchanged.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeLineBreaks(text string) string {
	return lineBreaks.Replace(text)
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func scopedKey(actor entities.Actor, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return actor.TenantID + ":" + key
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	out := value.UTC()
	return &out
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
