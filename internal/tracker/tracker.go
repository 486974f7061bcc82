// Package tracker consumes free-text replies: it records new activities with
// hashtag extraction, applies pending description edits, and ignores
// everything that was not asked for.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulselog/pulselog/internal/session"
)

// Store is the subset of the data access layer the tracker needs.
type Store interface {
	SaveActivity(ctx context.Context, userID int64, description string, recordedAt time.Time) (int64, error)
	UpdateActivityDescription(ctx context.Context, activityID, userID int64, description string) (bool, error)
	FindTagID(ctx context.Context, userID int64, name string) (int64, bool, error)
	LinkActivityTag(ctx context.Context, activityID, tagID int64) error
}

// Kind classifies what a free-text reply turned out to be.
type Kind int

const (
	// KindIgnored means nothing was pending for the user; the message is
	// ordinary text and is not recorded.
	KindIgnored Kind = iota
	// KindRecorded means the reply was consumed as a new activity.
	KindRecorded
	// KindEditApplied means the reply was consumed as an edited description.
	KindEditApplied
)

// Result describes the outcome of handling one free-text reply.
type Result struct {
	Kind Kind

	// Recorded outcome. LinkedTags were matched against registered tags and
	// attached; IgnoredTags were present in the text but unregistered.
	Saved       bool
	Description string
	LinkedTags  []string
	IgnoredTags []string

	// Edit outcome.
	EditOK bool
}

// Service dispatches free-text replies according to the user's conversation
// state.
type Service struct {
	store    Store
	sessions *session.Tracker
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a tracker service. now is injectable for tests; nil
// means time.Now.
func NewService(store Store, sessions *session.Tracker, logger *slog.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    store,
		sessions: sessions,
		logger:   logger.With("component", "tracker"),
		now:      now,
	}
}

// HandleReply consumes the next free-text message for a user. Conversation
// state is claimed before the first store call, so a duplicate or interleaved
// message can never double-record. Activities are never recorded without a
// prior outstanding prompt or edit request.
func (s *Service) HandleReply(ctx context.Context, userID int64, text string) Result {
	if activityID, ok := s.sessions.TakeAwaitingEdit(userID); ok {
		return s.applyEdit(ctx, userID, activityID, text)
	}

	if s.sessions.ConsumeActivityPrompt(userID) {
		return s.recordActivity(ctx, userID, text)
	}

	s.logger.InfoContext(ctx, "Ignoring unexpected message", "user_id", userID)
	return Result{Kind: KindIgnored}
}

// applyEdit overwrites the stored description for the pending activity. The
// conversation state was already cleared by TakeAwaitingEdit, so a failed
// update cannot leave the conversation stuck.
func (s *Service) applyEdit(ctx context.Context, userID, activityID int64, text string) Result {
	updated, err := s.store.UpdateActivityDescription(ctx, activityID, userID, text)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update activity description",
			"user_id", userID, "activity_id", activityID, "error", err)
		return Result{Kind: KindEditApplied, EditOK: false}
	}

	s.logger.InfoContext(ctx, "Activity edit applied",
		"user_id", userID, "activity_id", activityID, "updated", updated)
	return Result{Kind: KindEditApplied, EditOK: updated}
}

// recordActivity persists the reply as a new activity, timestamped with the
// current UTC instant, and links any registered hashtags it mentions.
// Unregistered hashtags degrade to "ignored"; they never block the save.
func (s *Service) recordActivity(ctx context.Context, userID int64, text string) Result {
	res := Result{Kind: KindRecorded, Description: text}

	tags := ExtractTags(text)

	activityID, err := s.store.SaveActivity(ctx, userID, text, s.now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save activity", "user_id", userID, "error", err)
		return res
	}
	res.Saved = true

	for _, tag := range tags {
		tagID, found, err := s.store.FindTagID(ctx, userID, tag)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to look up tag", "user_id", userID, "tag", tag, "error", err)
			res.IgnoredTags = append(res.IgnoredTags, tag)
			continue
		}
		if !found {
			res.IgnoredTags = append(res.IgnoredTags, tag)
			continue
		}
		if err := s.store.LinkActivityTag(ctx, activityID, tagID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to link tag", "user_id", userID, "tag", tag, "error", err)
			res.IgnoredTags = append(res.IgnoredTags, tag)
			continue
		}
		res.LinkedTags = append(res.LinkedTags, tag)
	}

	s.logger.InfoContext(ctx, "Activity recorded", "user_id", userID, "activity_id", activityID,
		"linked_tags", len(res.LinkedTags), "ignored_tags", len(res.IgnoredTags))
	return res
}
