package usecase

import (
	"sort"

	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/claude"
)

// extractTokenBudget reads context-window consumption from a terminal result
// chunk. It takes the first model entry of the usage map (single-model
// assumption) and, per counter, prefers the cumulative value over the
// per-turn one. Returns false for non-result chunks and chunks without a
// usage map.
func extractTokenBudget(msg *claude.Message, contextWindow int64) (model.TokenBudgetPayload, bool) {
	if msg == nil || !msg.IsResult() || len(msg.ModelUsage) == 0 {
		return model.TokenBudgetPayload{}, false
	}

	names := make([]string, 0, len(msg.ModelUsage))
	for name := range msg.ModelUsage {
		names = append(names, name)
	}
	sort.Strings(names)
	usage := msg.ModelUsage[names[0]]

	pick := func(cumulative *int64, perTurn int64) int64 {
		if cumulative != nil {
			return *cumulative
		}
		return perTurn
	}

	used := pick(usage.CumulativeInputTokens, usage.InputTokens) +
		pick(usage.CumulativeOutputTokens, usage.OutputTokens) +
		pick(usage.CumulativeCacheReadInputTokens, usage.CacheReadInputTokens) +
		pick(usage.CumulativeCacheCreationInputTokens, usage.CacheCreationInputTokens)

	total := contextWindow
	if total <= 0 {
		total = defaultContextWindow
	}
	return model.TokenBudgetPayload{Used: used, Total: total}, true
}
