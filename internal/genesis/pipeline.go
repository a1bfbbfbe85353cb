// internal/genesis/pipeline.go

// Package genesis drives family creation against the builder service: it
// validates the wizard draft, submits it, follows the build over a second
// event stream, and registers the finished family as a chat backend.
package genesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/bacoco/la-famille-agentui/internal/sse"
	"github.com/bacoco/la-famille-agentui/internal/state"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

// Runner executes family-creation pipelines. At most one run is in
// flight; starting a new run aborts the previous one.
type Runner struct {
	store      *state.GenesisStore
	backends   *state.BackendStore
	agents     *state.AgentStore
	families   *state.FamilyStore
	httpClient *http.Client

	mu       sync.Mutex
	inflight *runHandle
}

type runHandle struct {
	cancel context.CancelFunc
}

// NewRunner wires a pipeline runner over the genesis, backend, agent, and
// family stores.
func NewRunner(store *state.GenesisStore, backends *state.BackendStore, agents *state.AgentStore, families *state.FamilyStore) *Runner {
	return &Runner{
		store:      store,
		backends:   backends,
		agents:     agents,
		families:   families,
		httpClient: &http.Client{},
	}
}

// createResponse is the builder service's reply to a creation request.
type createResponse struct {
	PipelineID types.PipelineID `json:"pipelineId"`
}

// serviceError is the builder service's error envelope.
type serviceError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// streamPayload is one decoded pipeline stream event. Log entries carry no
// type; the terminal envelope has type "complete".
type streamPayload struct {
	Type   string                `json:"type"`
	Status string                `json:"status"`
	Result *types.PipelineResult `json:"result"`

	types.PipelineLogEntry
}

// Start validates the current draft and runs the creation pipeline to
// completion, blocking until the build finishes, fails, or is aborted. A
// draft that fails validation leaves all pipeline state untouched.
// Aborting is not an error.
func (r *Runner) Start(ctx context.Context, genesisURL, token string) error {
	spec := r.store.Spec()
	if err := ValidateSpec(spec); err != nil {
		return err
	}

	ctx, handle := r.takeover(ctx)
	defer r.release(handle)

	r.store.BeginPipeline()
	slog.Info("starting family creation", "family", spec.Name, "agents", len(spec.Agents))

	pipelineID, err := r.submit(ctx, genesisURL, token, spec)
	if err != nil {
		if isAbort(err) {
			r.store.SetPipelineStatus(types.PipelineIdle)
			return nil
		}
		r.fail(err.Error())
		return nil
	}
	r.store.SetPipelineID(pipelineID)

	if err := r.follow(ctx, genesisURL, token, pipelineID); err != nil {
		if isAbort(err) {
			r.store.SetPipelineStatus(types.PipelineIdle)
			return nil
		}
		r.fail(err.Error())
	}
	return nil
}

// submit posts the spec to the builder service and returns the pipeline ID.
func (r *Runner) submit(ctx context.Context, genesisURL, token string, spec types.FamilyCreationRequest) (types.PipelineID, error) {
	payload, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("marshaling family spec: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, genesisURL+"/v1/families/create", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting family spec: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var svcErr serviceError
		if json.NewDecoder(resp.Body).Decode(&svcErr) == nil && svcErr.Error.Message != "" {
			return "", fmt.Errorf("%s", svcErr.Error.Message)
		}
		return "", fmt.Errorf("creation request failed: %s", resp.Status)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parsing creation response: %w", err)
	}
	if out.PipelineID == "" {
		return "", fmt.Errorf("creation response missing pipeline ID")
	}
	return out.PipelineID, nil
}

// follow consumes the pipeline's event stream until the terminal envelope
// arrives. A stream that ends while the pipeline is still running counts
// as a lost connection.
func (r *Runner) follow(ctx context.Context, genesisURL, token string, pipelineID types.PipelineID) error {
	streamURL := fmt.Sprintf("%s/v1/families/pipeline/%s?token=%s", genesisURL, pipelineID, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to pipeline stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return fmt.Errorf("failed to connect to pipeline stream: %s", resp.Status)
	}

	frames := sse.NewFrameReader(resp.Body)
	defer frames.Close()

	for {
		payload, err := frames.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading pipeline stream: %w", err)
		}

		var event streamPayload
		if json.Unmarshal([]byte(payload), &event) != nil {
			continue
		}

		if event.Type == "complete" {
			status := types.PipelineError
			if event.Status == "complete" {
				status = types.PipelineComplete
			}
			r.store.FinishPipeline(status, event.Result)
			slog.Info("family creation finished", "status", status)
			return nil
		}
		if event.Stage == "" && event.Message == "" {
			continue
		}
		r.store.AppendLog(event.PipelineLogEntry)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.store.PipelineStatus() == types.PipelineRunning {
		return fmt.Errorf("connection to pipeline lost")
	}
	return nil
}

// Abort cancels the in-flight run, if any, and returns the pipeline to
// idle.
func (r *Runner) Abort() {
	r.mu.Lock()
	if r.inflight != nil {
		r.inflight.cancel()
		r.inflight = nil
	}
	r.mu.Unlock()

	if r.store.PipelineStatus() == types.PipelineRunning {
		r.store.SetPipelineStatus(types.PipelineIdle)
	}
}

// takeover aborts any in-flight run and installs this one as current.
func (r *Runner) takeover(ctx context.Context) (context.Context, *runHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inflight != nil {
		r.inflight.cancel()
	}
	ctx, cancelFn := context.WithCancel(ctx)
	handle := &runHandle{cancel: cancelFn}
	r.inflight = handle
	return ctx, handle
}

func (r *Runner) release(handle *runHandle) {
	handle.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight == handle {
		r.inflight = nil
	}
}

// fail records a terminal error outcome.
func (r *Runner) fail(msg string) {
	slog.Error("family creation failed", "error", msg)
	r.store.FinishPipeline(types.PipelineError, &types.PipelineResult{Error: msg})
}

func isAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
