package usecase

import (
	"context"
	"fmt"
	"strings"

	"AlgoSensei/internal/domain/models"
	drepo "AlgoSensei/internal/domain/repository"
	applogger "AlgoSensei/pkg/logger"
)

const (
	strategySystemPrompt = "You are an expert algorithmic trading assistant for AlgoSensei, a no-code trading strategy builder platform. Provide professional, accurate, and actionable trading strategy advice."
	backtestSystemPrompt = "You are an expert algorithmic trading assistant for AlgoSensei. Provide professional, data-driven analysis of backtest results with actionable optimization suggestions."

	noticeStrategyNotConfigured = "OpenAI API key is not configured. Please add the OPENAI_API_KEY environment variable to enable AI-powered strategy advice."
	noticeBacktestNotConfigured = "OpenAI API key is not configured. Please add the OPENAI_API_KEY environment variable to enable AI-powered analysis."
	noticeStrategyUnavailable   = "Unable to generate strategy advice at this time. Please try again later."
	noticeBacktestUnavailable   = "Unable to analyze backtest results at this time. Please try again later."
)

// Advisor wraps the LLM with a keyword-based fallback.
type Advisor struct {
	llm     drepo.ChatCompleter
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewAdvisor creates an advisor.
func NewAdvisor(llm drepo.ChatCompleter, metrics drepo.Metrics, logger *applogger.Logger) *Advisor {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Advisor{llm: llm, metrics: metrics, logger: logger}
}

// StrategyAdvice suggests indicators, entry/exit rules and risk parameters for a market condition.
func (a *Advisor) StrategyAdvice(ctx context.Context, marketCondition, currentStrategy string) models.Advice {
	var b strings.Builder
	b.WriteString("As an algorithmic trading expert, provide advice for a trading strategy based on the following market conditions:\n")
	b.WriteString(marketCondition)
	b.WriteString("\n\n")
	if s := strings.TrimSpace(currentStrategy); s != "" {
		fmt.Fprintf(&b, "The current strategy is: %s\n\n", s)
	}
	b.WriteString("Provide specific recommendations for indicators, entry/exit conditions, and risk management parameters.\n")
	b.WriteString("Format your response in a clear, concise manner that can be easily understood by traders.")

	return a.ask(ctx, "strategy", strategySystemPrompt, b.String(),
		noticeStrategyNotConfigured, noticeStrategyUnavailable,
		FallbackStrategyAdvice(marketCondition))
}

// AnalyzeBacktest comments on backtest results. Without the LLM it answers with the
// keyword advice matched against the results text.
func (a *Advisor) AnalyzeBacktest(ctx context.Context, results string) models.Advice {
	prompt := "Analyze the following backtest results and provide insights and optimization suggestions:\n" +
		results + "\n\n" +
		"Include analysis of:\n" +
		"1. Overall performance metrics\n" +
		"2. Risk-adjusted returns\n" +
		"3. Potential weaknesses in the strategy\n" +
		"4. Specific optimization suggestions"

	return a.ask(ctx, "backtest", backtestSystemPrompt, prompt,
		noticeBacktestNotConfigured, noticeBacktestUnavailable,
		FallbackStrategyAdvice(results))
}

func (a *Advisor) ask(ctx context.Context, kind, system, prompt, notConfigured, unavailable, fallback string) models.Advice {
	if a.llm == nil || !a.llm.Configured() {
		a.metrics.RecordAdvisorCall(string(models.AdviceSourceFallback))
		return models.Advice{Text: fallback, Source: models.AdviceSourceFallback, Notice: notConfigured}
	}

	text, err := a.llm.Complete(ctx, system, prompt)
	if err != nil || text == "" {
		a.logger.Warn("advisor provider failed, using fallback", applogger.String("kind", kind), applogger.Error(err))
		a.metrics.RecordAdvisorCall(string(models.AdviceSourceFallback))
		return models.Advice{Text: fallback, Source: models.AdviceSourceFallback, Notice: unavailable}
	}

	a.metrics.RecordAdvisorCall(string(models.AdviceSourceLLM))
	return models.Advice{Text: text, Source: models.AdviceSourceLLM}
}
