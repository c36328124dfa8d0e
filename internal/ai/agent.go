package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxRounds bounds the tool-call loop of a single question.
const maxRounds = 5

// ErrNotConfigured means no API key was set.
var ErrNotConfigured = errors.New("assistant is not configured")

type Agent struct {
	apiKey string
	model  string
	tools  *Tools
	log    *slog.Logger
	now    func() time.Time
}

func NewAgent(apiKey, model string, tools *Tools, log *slog.Logger) *Agent {
	if log == nil {
		log = slog.Default()
	}
	return &Agent{apiKey: apiKey, model: model, tools: tools, log: log, now: time.Now}
}

func (a *Agent) prompt(message string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant of a mobile repair and electronics shop.

	RULES:
	1. UPDATE: If a user asks to update a product by NAME, do NOT ask them for the ID. Call 'check_inventory' to find the ID, then 'update_product_price'.
	2. READ: For PRICE, COST, STOCK or DETAILS of a product, call 'check_inventory' and read the JSON.
	3. SALES: For sales or revenue, use 'get_sales_report'.
	4. DUES: For who owes money or pending payments, use 'list_outstanding_dues'.
	5. RESTOCK: For what needs reordering, use 'low_stock'.

	USER: %s`, a.now().Format(time.DateOnly), message)
}

// Run answers one question, executing tool calls until the model replies
// with text.
func (a *Agent) Run(ctx context.Context, message string) (string, error) {
	if a == nil || a.apiKey == "" {
		return "", ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: a.tools.Declarations()}}
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.prompt(message)))
	if err != nil {
		return "", err
	}
	for round := 0; round < maxRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}
		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			replies = append(replies, a.execute(ctx, call))
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

func (a *Agent) execute(ctx context.Context, call genai.FunctionCall) genai.FunctionResponse {
	out, err := a.tools.Call(ctx, call.Name, call.Args)
	if err != nil {
		a.log.Warn("assistant tool failed", slog.String("tool", call.Name), slog.Any("error", err))
		out = map[string]any{"error": err.Error()}
	}
	return genai.FunctionResponse{Name: call.Name, Response: out}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I completed the action."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
