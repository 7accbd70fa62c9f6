// Package chat runs the interactive terminal conversation with the agent.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/comigor/booking-go/internal/config"
	"github.com/comigor/booking-go/internal/logger"
)

// LineReader yields one line of user input per call and io.EOF when the
// input ends.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Processor answers one message of a session.
type Processor interface {
	Process(ctx context.Context, sessionID, input string) (string, error)
}

// NewReadline creates a terminal line reader with the configured prompt and
// history file.
func NewReadline(cfg config.ChatConfig) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.UserPrompt,
		HistoryFile:     cfg.HistoryFile,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       cfg.ExitCommand,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

// Loop reads customer messages until the exit sentinel or end of input
// and prints the assistant's replies.
type Loop struct {
	in        LineReader
	out       io.Writer
	agent     Processor
	cfg       config.ChatConfig
	sessionID string
}

func NewLoop(in LineReader, out io.Writer, agent Processor, cfg config.ChatConfig, sessionID string) *Loop {
	return &Loop{in: in, out: out, agent: agent, cfg: cfg, sessionID: sessionID}
}

// Run blocks until the customer leaves or ctx is cancelled. Agent failures
// are reported to the customer and do not end the loop.
func (l *Loop) Run(ctx context.Context) error {
	defer l.in.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := l.in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				l.say(l.cfg.Farewell)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if l.isExit(input) {
			l.say(l.cfg.Farewell)
			return nil
		}

		answer, err := l.agent.Process(ctx, l.sessionID, input)
		if err != nil {
			logger.L.Error("agent failed", "session", l.sessionID, "error", err)
			l.say("Xin lỗi, đã có lỗi xảy ra. Bạn vui lòng thử lại nhé.")
			continue
		}
		l.say(answer)
	}
}

func (l *Loop) isExit(input string) bool {
	for _, word := range []string{l.cfg.ExitCommand, "exit"} {
		if word != "" && strings.EqualFold(input, word) {
			return true
		}
	}
	return false
}

func (l *Loop) say(text string) {
	fmt.Fprintf(l.out, "%s%s\n", l.cfg.AssistantLabel, text)
}
