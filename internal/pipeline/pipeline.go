// Package pipeline orchestrates one command invocation end to end:
// validation, rate limiting, prompt construction, the model call, response
// normalization, and usage recording. Each invocation is stateless; the only
// shared state is the reusable model client and the semaphore bounding
// concurrent model calls.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/luminalights/lumina/internal/anthropic"
	"github.com/luminalights/lumina/internal/prompt"
	"github.com/luminalights/lumina/internal/ratelimit"
	"github.com/luminalights/lumina/internal/request"
	"github.com/luminalights/lumina/internal/response"
	"github.com/luminalights/lumina/internal/storage"
)

const defaultMaxInFlight = 8

// LLMClient abstracts the model transport so tests can substitute a fake
// without global mutable state.
type LLMClient interface {
	Send(ctx context.Context, system string, messages []anthropic.Message) (*anthropic.Reply, error)
}

// UsageWriter is the append-only write path for usage records.
type UsageWriter interface {
	AppendUsage(ctx context.Context, rec storage.UsageRecord) error
}

// Handler runs the command-processing pipeline.
type Handler struct {
	limiter *ratelimit.Limiter
	usage   UsageWriter
	client  LLMClient
	sem     *semaphore.Weighted
}

// New wires a Handler. maxInFlight bounds concurrent model calls across all
// requests (default 8 when non-positive).
func New(limiter *ratelimit.Limiter, usage UsageWriter, client LLMClient, maxInFlight int64) *Handler {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Handler{
		limiter: limiter,
		usage:   usage,
		client:  client,
		sem:     semaphore.NewWeighted(maxInFlight),
	}
}

// ProcessCommand handles one single-command invocation. Exactly one usage
// record is appended per call, success or failure; a failed write is logged
// and never surfaced, so persistence trouble cannot mask a result the user
// is waiting on.
func (h *Handler) ProcessCommand(ctx context.Context, userID string, payload []byte) (resp *response.CommandResponse, err error) {
	start := time.Now()
	rec := storage.UsageRecord{UserID: userID, Status: "failed"}
	defer func() {
		rec.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			rec.Error = err.Error()
		}
		h.record(rec)
	}()

	req, err := request.Parse(payload)
	if err != nil {
		return nil, err
	}

	// The limit check runs strictly before prompt construction so over-limit
	// users never spend model quota.
	if _, err = h.limiter.Check(ctx, userID); err != nil {
		return nil, err
	}

	system := prompt.BuildAssistant(prompt.Context{
		State:     req.CurrentLightingState,
		Device:    req.DeviceConfig,
		Favorites: req.UserFavorites,
	})

	reply, err := h.send(ctx, system, req)
	if err != nil {
		return nil, err
	}
	rec.InputTokens = reply.Usage.InputTokens
	rec.OutputTokens = reply.Usage.OutputTokens
	rec.Model = reply.Model

	resp, err = response.ParseCommand(reply.JSON)
	if err != nil {
		return nil, err
	}

	rec.Status = "success"
	return resp, nil
}

// ProcessSchedule handles one multi-day scheduler invocation. The payload
// may carry an optional scheduleContext object with timezone, sun times,
// the current schedule, and a team color table.
func (h *Handler) ProcessSchedule(ctx context.Context, userID string, payload []byte) (resp *response.ScheduleResponse, err error) {
	start := time.Now()
	rec := storage.UsageRecord{UserID: userID, Status: "failed"}
	defer func() {
		rec.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			rec.Error = err.Error()
		}
		h.record(rec)
	}()

	req, err := request.Parse(payload)
	if err != nil {
		return nil, err
	}

	if _, err = h.limiter.Check(ctx, userID); err != nil {
		return nil, err
	}

	schedCtx := parseScheduleContext(payload)
	schedCtx.Context = prompt.Context{
		State:     req.CurrentLightingState,
		Device:    req.DeviceConfig,
		Favorites: req.UserFavorites,
	}
	system := prompt.BuildScheduler(schedCtx)

	reply, err := h.send(ctx, system, req)
	if err != nil {
		return nil, err
	}
	rec.InputTokens = reply.Usage.InputTokens
	rec.OutputTokens = reply.Usage.OutputTokens
	rec.Model = reply.Model

	resp, err = response.ParseSchedule(reply.JSON)
	if err != nil {
		return nil, err
	}

	rec.Status = "success"
	return resp, nil
}

// send bounds concurrent model calls and forwards the validated conversation.
func (h *Handler) send(ctx context.Context, system string, req *request.CommandRequest) (*anthropic.Reply, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	messages := make([]anthropic.Message, 0, len(req.ConversationHistory)+1)
	for _, t := range req.ConversationHistory {
		messages = append(messages, anthropic.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, anthropic.Message{Role: "user", Content: req.TranscribedText})

	return h.client.Send(ctx, system, messages)
}

// record appends the usage record with a short independent deadline.
// Log-and-continue: recording must not block or fail the primary response.
func (h *Handler) record(rec storage.UsageRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.usage.AppendUsage(ctx, rec); err != nil {
		slog.Warn("failed to append usage record", "user_id", rec.UserID, "status", rec.Status, "error", err)
	}
}
