// Package telegram sends refresh alerts to a single configured chat.
package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/internal/adapters/config"
	"github.com/selivandex/rsi-screener/internal/screener"
	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// Notifier sends opportunity alerts via Telegram
type Notifier struct {
	api *tgbotapi.BotAPI
	cfg *config.TelegramConfig
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{
		api: bot,
		cfg: cfg,
	}, nil
}

// SendOpportunityAlert sends the top long and short setups from a refresh.
// Stays silent when no record clears the score floor.
func (n *Notifier) SendOpportunityAlert(snapshot *screener.Snapshot, topN int, scoreFloor float64) error {
	longs, shorts := topSetups(snapshot.Records, topN, scoreFloor)
	if len(longs) == 0 && len(shorts) == 0 {
		logger.Debug("no opportunities above alert floor, skipping alert",
			zap.Float64("floor", scoreFloor),
		)
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📡 *Screener refresh* `%s`\n", snapshot.GeneratedAt.Format("2006-01-02 15:04"))
	if snapshot.BTCRegime != nil && snapshot.BTCWeeklyRSI != nil {
		fmt.Fprintf(&sb, "BTC regime: %s (weekly RSI %.1f)\n", snapshot.BTCRegime.Combined, *snapshot.BTCWeeklyRSI)
	}

	if len(longs) > 0 {
		sb.WriteString("\n📈 *Top long setups*\n")
		for i, record := range longs {
			writeSetupLine(&sb, i+1, record)
		}
	}

	if len(shorts) > 0 {
		sb.WriteString("\n📉 *Top short setups*\n")
		for i, record := range shorts {
			writeSetupLine(&sb, i+1, record)
		}
	}

	return n.sendMessageMarkdown(n.cfg.ChatID, sb.String())
}

// writeSetupLine renders one ranked record with its score breakdown
func writeSetupLine(sb *strings.Builder, rank int, record screener.SignalRecord) {
	fmt.Fprintf(sb, "%d. *%s* score %.2f (base %.2f × fresh %.1f × conf %.2f)\n",
		rank,
		strings.ToUpper(record.Symbol),
		record.Opportunity.FinalScore,
		record.Opportunity.BaseScore,
		record.Opportunity.FreshnessMultiplier,
		record.Opportunity.ConfluenceMultiplier,
	)

	fmt.Fprintf(sb, "   RSI %.1f/%.1f", record.DailyRSI, record.WeeklyRSI)
	if record.DivergenceType != "" {
		fmt.Fprintf(sb, " | div %s ×%d", record.DivergenceType, record.DivergenceScore)
	}
	if record.FundingConfluence != nil && record.FundingConfluence.Aligned {
		fmt.Fprintf(sb, " | funding %s", record.FundingConfluence.Strength)
	}
	if record.Sector != "" {
		fmt.Fprintf(sb, " | %s", record.Sector)
	}
	sb.WriteString("\n")
}

// topSetups splits ranked records by direction and keeps the top N per side.
// Records arrive already sorted by final score.
func topSetups(records []screener.SignalRecord, topN int, scoreFloor float64) (longs, shorts []screener.SignalRecord) {
	for _, record := range records {
		if record.Opportunity.FinalScore < scoreFloor {
			continue
		}
		switch record.Direction {
		case models.DirectionLong:
			if len(longs) < topN {
				longs = append(longs, record)
			}
		case models.DirectionShort:
			if len(shorts) < topN {
				shorts = append(shorts, record)
			}
		}
	}
	return longs, shorts
}

func (n *Notifier) sendMessageMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	_, err := n.api.Send(msg)
	if err != nil {
		logger.Error("failed to send telegram message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
