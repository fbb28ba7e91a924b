package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	commonerrors "weather-assistant/internal/common/errors"
	"weather-assistant/internal/common/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat turn in the extraction conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Extractor sends a conversation to a JSON-constrained chat endpoint and
// returns the decoded object. Implementations carry no retry policy of
// their own; the interpreter owns repairs.
type Extractor interface {
	Extract(ctx context.Context, conversation []Message) (map[string]interface{}, error)
}

// Interpreter drives extraction and validation, repairing malformed model
// output through a bounded number of follow-up turns. Each invocation is
// independent: the conversation accumulator is local and discarded on
// completion.
type Interpreter struct {
	schema     *Schema
	extractor  Extractor
	maxRepairs int
	logger     *zap.Logger
}

// NewInterpreter wires an interpreter with the given repair budget.
// maxRepairs counts follow-up round-trips beyond the initial extraction;
// the baseline default is 1.
func NewInterpreter(schema *Schema, extractor Extractor, maxRepairs int, log *zap.Logger) *Interpreter {
	if maxRepairs < 0 {
		maxRepairs = 0
	}
	return &Interpreter{
		schema:     schema,
		extractor:  extractor,
		maxRepairs: maxRepairs,
		logger:     log.With(zap.String("component", "interpreter")),
	}
}

// Interpret turns free-form user text into a validated ParsedQuery.
// A transport failure propagates immediately: rephrasing the prompt cannot
// fix a broken endpoint. A validation failure drives at most maxRepairs
// repair round-trips before surfacing a terminal extraction failure.
func (i *Interpreter) Interpret(ctx context.Context, userText string) (ParsedQuery, error) {
	start := time.Now()
	defer func() { metrics.InterpretDuration.Observe(time.Since(start).Seconds()) }()

	log := i.logger.With(zap.String("queryID", uuid.NewString()))

	conversation := []Message{
		{Role: RoleSystem, Content: i.schema.Instruction()},
		{Role: RoleUser, Content: userText},
	}

	var lastInvalid *commonerrors.ValidationError
	for attempt := 0; attempt <= i.maxRepairs; attempt++ {
		raw, err := i.extractor.Extract(ctx, conversation)
		if err != nil {
			metrics.QueriesInterpreted.WithLabelValues("transport_failure").Inc()
			log.Error("extraction transport failed", zap.Error(err), zap.Int("attempt", attempt))
			return ParsedQuery{}, err
		}

		parsed, err := i.schema.Validate(raw)
		if err == nil {
			metrics.QueriesInterpreted.WithLabelValues("ok").Inc()
			log.Info("query interpreted",
				zap.String("timePeriod", parsed.TimePeriod()),
				zap.String("location", parsed.Location()),
				zap.String("attribute", parsed.Attribute()),
				zap.Int("repairs", attempt),
			)
			return parsed, nil
		}

		invalid, ok := commonerrors.AsValidation(err)
		if !ok {
			return ParsedQuery{}, err
		}
		lastInvalid = invalid

		if attempt == i.maxRepairs {
			break
		}

		metrics.RepairAttempts.Inc()
		log.Warn("model output failed validation, repairing",
			zap.Strings("violations", invalid.FieldMessages()),
			zap.Int("attempt", attempt),
		)
		conversation = append(conversation, Message{Role: RoleUser, Content: i.repairInstruction(invalid)})
	}

	metrics.QueriesInterpreted.WithLabelValues("extraction_failed").Inc()
	log.Error("extraction failed, repair budget exhausted", zap.Int("maxRepairs", i.maxRepairs))
	return ParsedQuery{}, commonerrors.NewExtractionFailedError(i.maxRepairs, lastInvalid)
}

// repairInstruction tells the model its previous output was invalid, echoes
// that output verbatim, and restates the contract.
func (i *Interpreter) repairInstruction(invalid *commonerrors.ValidationError) string {
	previous, _ := json.Marshal(invalid.Raw)

	var b strings.Builder
	b.WriteString("Your previous output was invalid.\n")
	b.WriteString("Previous output: ")
	b.Write(previous)
	b.WriteString("\nProblems:\n")
	for _, msg := range invalid.FieldMessages() {
		fmt.Fprintf(&b, "- %s\n", msg)
	}
	b.WriteString("\n")
	b.WriteString(i.schema.Instruction())
	return b.String()
}
