package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"

	"github.com/comigor/booking-go/internal/availability"
	"github.com/comigor/booking-go/internal/config"
	"github.com/comigor/booking-go/internal/history"
	"github.com/comigor/booking-go/internal/llm"
	"github.com/comigor/booking-go/internal/logger"
	"github.com/comigor/booking-go/internal/metrics"
	"github.com/comigor/booking-go/pkg/tools"
)

// FSM States
type FSMState stateless.State

var (
	StateReadyToCallLLM FSMState = "ReadyToCallLLM"
	StateExecutingTools FSMState = "ExecutingTools"
	StateDone           FSMState = "Done"  // Terminal: successful completion
	StateError          FSMState = "Error" // Terminal: error state
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerProcessInput            FSMTrigger = "ProcessInput"
	TriggerLLMRespondedWithContent FSMTrigger = "LLMRespondedWithContent"
	TriggerLLMRequestedTools       FSMTrigger = "LLMRequestedTools"
	TriggerToolsExecutionCompleted FSMTrigger = "ToolsExecutionCompleted"
	TriggerErrorOccurred           FSMTrigger = "ErrorOccurred"
)

var (
	// ErrLLMTimeout is returned when a chat completion exceeds llm.timeout.
	ErrLLMTimeout = errors.New("language model request timed out")
	// ErrMaxTurns is returned when the model keeps requesting tools.
	ErrMaxTurns = errors.New("exceeded maximum interaction turns")
)

const (
	defaultMaxTurns    = 5
	invalidArgsMessage = "Invalid input format. Please provide a valid JSON object."
)

// Agent is the booking assistant: it relays one customer message at a time
// to the language model and runs the tool calls the model requests.
type Agent struct {
	llmClient llm.Client
	cfg       config.LLMConfig
	salon     config.SalonConfig
	tools     *tools.Manager
	llmTools  []openai.Tool
	history   *history.Store
	loc       *time.Location
	now       func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithClock replaces time.Now in the system prompt and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithLocation sets the timezone the current time is reported in.
func WithLocation(loc *time.Location) Option {
	return func(a *Agent) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// New creates a new agent offering every tool of manager to the model.
// A nil store keeps conversations in memory only.
func New(llmClient llm.Client, cfg config.Config, manager *tools.Manager, store *history.Store, opts ...Option) *Agent {
	if manager == nil {
		manager = tools.NewManager()
	}
	if store == nil {
		store = history.Open("")
	}
	a := &Agent{
		llmClient: llmClient,
		cfg:       cfg.LLM,
		salon:     cfg.Salon,
		tools:     manager,
		history:   store,
		loc:       salonLocation(cfg.Salon),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, t := range manager.List() {
		a.llmTools = append(a.llmTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
		logger.L.Debug("Registered tool for LLM", "tool", t.Name())
	}
	return a
}

func salonLocation(salon config.SalonConfig) *time.Location {
	if salon.Timezone != "" {
		if loc, err := time.LoadLocation(salon.Timezone); err == nil {
			return loc
		}
		logger.L.Warn("unknown salon timezone; using default", "timezone", salon.Timezone)
	}
	return availability.DefaultLocation()
}

// Process answers one customer message within a session. The session's
// earlier turns are replayed to the model, and the exchange is stored once
// the model has produced a final answer.
func (a *Agent) Process(ctx context.Context, sessionID, request string) (string, error) {
	// FSM context data
	type fsmContext struct {
		messages     []openai.ChatCompletionMessage
		llmResponse  *openai.ChatCompletionResponse
		finalContent string
		lastError    error
		currentTurn  int
		maxTurns     int
	}

	now := a.now().In(a.loc)
	systemPrompt, err := SystemPrompt(a.cfg, a.salon, now)
	if err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: systemPrompt}}
	for _, m := range a.history.List(ctx, sessionID) {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: request})

	maxTurns := a.cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	fsmCtx := &fsmContext{messages: messages, maxTurns: maxTurns}

	fsm := stateless.NewStateMachine(StateReadyToCallLLM)

	// ReadyToCallLLM: call the model with the transcript so far, then go to
	// ExecutingTools or Done depending on the reply.
	fsm.Configure(StateReadyToCallLLM).
		PermitReentry(TriggerProcessInput).
		OnEntry(func(ctx context.Context, args ...any) error {
			if fsmCtx.currentTurn >= fsmCtx.maxTurns {
				logger.L.Warn("Max interaction turns reached.", "maxTurns", fsmCtx.maxTurns, "session", sessionID)
				fsmCtx.lastError = ErrMaxTurns
				return fsm.FireCtx(ctx, TriggerErrorOccurred)
			}
			fsmCtx.currentTurn++
			logger.L.Debug("FSM: Entering StateReadyToCallLLM", "turn", fsmCtx.currentTurn)

			llmResp, err := a.complete(ctx, fsmCtx.messages)
			if err != nil {
				logger.L.Error("LLM call failed", "error", err)
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerErrorOccurred)
			}
			fsmCtx.llmResponse = &llmResp

			if len(llmResp.Choices) > 0 && len(llmResp.Choices[0].Message.ToolCalls) > 0 {
				return fsm.FireCtx(ctx, TriggerLLMRequestedTools)
			}
			return fsm.FireCtx(ctx, TriggerLLMRespondedWithContent)
		}).
		Permit(TriggerLLMRequestedTools, StateExecutingTools).
		Permit(TriggerLLMRespondedWithContent, StateDone).
		Permit(TriggerErrorOccurred, StateError)

	// ExecutingTools: run every requested tool and feed the results back.
	fsm.Configure(StateExecutingTools).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("FSM: Entering StateExecutingTools")
			llmMessage := fsmCtx.llmResponse.Choices[0].Message
			fsmCtx.messages = append(fsmCtx.messages, llmMessage)

			for _, toolCall := range llmMessage.ToolCalls {
				fsmCtx.messages = append(fsmCtx.messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    a.runTool(ctx, toolCall),
					ToolCallID: toolCall.ID,
					Name:       toolCall.Function.Name,
				})
			}
			return fsm.FireCtx(ctx, TriggerToolsExecutionCompleted)
		}).
		Permit(TriggerToolsExecutionCompleted, StateReadyToCallLLM).
		Permit(TriggerErrorOccurred, StateError)

	fsm.Configure(StateDone).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("FSM: Entering StateDone")
			if fsmCtx.llmResponse == nil || len(fsmCtx.llmResponse.Choices) == 0 {
				fsmCtx.lastError = errors.New("LLM returned no choices")
				return nil
			}
			fsmCtx.finalContent = fsmCtx.llmResponse.Choices[0].Message.Content
			return nil
		})

	fsm.Configure(StateError).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("FSM: Entering StateError")
			if fsmCtx.lastError == nil {
				fsmCtx.lastError = errors.New("FSM: reached error state without a specific error")
			}
			return nil
		})

	if err := fsm.FireCtx(ctx, TriggerProcessInput); err != nil {
		return "", fmt.Errorf("FSM error: %w", err)
	}

	currentState, err := fsm.State(ctx)
	if err != nil {
		return "", fmt.Errorf("FSM internal error: %w", err)
	}
	if fsmCtx.lastError != nil {
		return "", fsmCtx.lastError
	}
	if currentState != StateDone {
		return "", fmt.Errorf("FSM ended in an unexpected state: %v", currentState)
	}

	a.remember(ctx, sessionID, request, fsmCtx.finalContent)
	return fsmCtx.finalContent, nil
}

// complete runs one chat completion under llm.timeout.
func (a *Agent) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	resp, err := a.llmClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		Tools:       a.llmTools,
		Temperature: a.cfg.Temperature,
	})
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		metrics.IncLLMRequest("timeout")
		return resp, fmt.Errorf("%w: %v", ErrLLMTimeout, err)
	case err != nil:
		metrics.IncLLMRequest("error")
		return resp, err
	}
	metrics.IncLLMRequest("ok")
	return resp, nil
}

// runTool executes one tool call and returns the text reported back to the
// model. Failures are reported as text so the model can recover.
func (a *Agent) runTool(ctx context.Context, call openai.ToolCall) string {
	name := call.Function.Name
	tool, err := a.tools.Get(name)
	if err != nil {
		logger.L.Warn("LLM requested unknown tool", "tool", name)
		metrics.IncToolCall(name, "unknown")
		return "Error: " + err.Error()
	}

	args := strings.TrimSpace(call.Function.Arguments)
	if args == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		logger.L.Error("Failed to parse tool arguments", "tool", name, "arguments", args)
		metrics.IncToolCall(name, "invalid_args")
		return invalidArgsMessage
	}

	logger.L.Info("Calling tool", "tool", name, "arguments", args)
	out, err := tool.Run(ctx, args)
	if err != nil {
		logger.L.Error("Tool execution failed", "tool", name, "error", err)
		metrics.IncToolCall(name, "error")
		return "Error: " + err.Error()
	}
	metrics.IncToolCall(name, "ok")
	return out
}

func (a *Agent) remember(ctx context.Context, sessionID, request, answer string) {
	now := a.now()
	a.history.Save(ctx, history.Message{SessionID: sessionID, Role: openai.ChatMessageRoleUser, Content: request, CreatedAt: now})
	a.history.Save(ctx, history.Message{SessionID: sessionID, Role: openai.ChatMessageRoleAssistant, Content: answer, CreatedAt: now})
}
