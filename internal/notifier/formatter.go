package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockRadar/internal/model"
	"StockRadar/internal/universe"
)

// StatusLabel returns the row status shown next to a classification.
func StatusLabel(sig model.Signal) string {
	switch sig {
	case model.SignalStrongBuy:
		return "長多回檔 (強烈買訊)"
	case model.SignalWatch:
		return "觀察中 (RSI < 40)"
	case model.SignalOverheated:
		return "過熱 (注意風險)"
	default:
		return ""
	}
}

// RSIBadge decorates the RSI column the way the result tables do.
func RSIBadge(c model.Classification) string {
	switch c.Signal {
	case model.SignalStrongBuy:
		return fmt.Sprintf("%.1f 🔥", c.RSI)
	case model.SignalOverheated:
		return fmt.Sprintf("%.1f ⚠️", c.RSI)
	default:
		return fmt.Sprintf("%.1f", c.RSI)
	}
}

// FormatReport renders a scan report as a Telegram HTML message.
func FormatReport(r *model.ScanReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📡 <b>StockRadar 全市場掃描</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("策略：RSI + 200MA | 掃描 %d 檔，略過 %d 檔\n\n", len(r.Outcomes), len(r.Skipped())))

	b.WriteString("🟢 <b>潛力買點 (回後買上漲)</b>\n")
	if len(r.Result.Buy) == 0 {
		b.WriteString("目前沒有股票符合「長多回檔 (RSI&lt;40)」的條件。\n")
	} else {
		b.WriteString(fmt.Sprintf("共找到 %d 檔符合條件！\n", len(r.Result.Buy)))
		for _, c := range r.Result.Buy {
			writeRow(&b, c)
		}
		b.WriteString("💡 <b>解讀</b>：這些股票長線趨勢向上 (MA200 支撐)，但短線跌深了。請確認 K 線型態。\n")
	}

	b.WriteString("\n🔴 <b>潛力賣點 (短線過熱)</b>\n")
	if len(r.Result.Sell) == 0 {
		b.WriteString("目前沒有股票 RSI &gt; 70。\n")
	} else {
		b.WriteString(fmt.Sprintf("共找到 %d 檔過熱股！\n", len(r.Result.Sell)))
		for _, c := range r.Result.Sell {
			writeRow(&b, c)
		}
		b.WriteString("💡 <b>解讀</b>：這些股票短線 RSI 過高，隨時可能回檔整理。\n")
	}

	return b.String()
}

func writeRow(b *strings.Builder, c model.Classification) {
	code := universe.ShortCode(c.Symbol)
	b.WriteString(fmt.Sprintf("• <b>%s</b>", html.EscapeString(code)))
	if c.Name != "" && c.Name != c.Symbol {
		b.WriteString(" " + html.EscapeString(c.Name))
	}
	b.WriteString(fmt.Sprintf(" | %s\n", c.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("   收盤 %.2f | RSI %s | 200MA %.2f", c.Close, RSIBadge(c), c.MA200))
	if c.Signal.IsBuySide() {
		b.WriteString(fmt.Sprintf(" | 乖離 %.1f%%", c.Deviation))
	}
	b.WriteString(fmt.Sprintf(" | %s\n", html.EscapeString(StatusLabel(c.Signal))))
}

// FormatFailure renders an aborted scan.
func FormatFailure(err error) string {
	return fmt.Sprintf("❌ <b>下載失敗</b>，可能是網路不穩，請重試。\n錯誤: %s", html.EscapeString(err.Error()))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("📡 <b>StockRadar 指令</b>\n\n")
	b.WriteString("/scan - 立即掃描全市場\n")
	b.WriteString("/last - 最新一次掃描結果\n")
	b.WriteString("/help - 顯示本說明\n\n")
	b.WriteString("✅ 買進條件：股價在 200MA (年線) 之上，且 RSI &lt; 30 (或 40)。\n")
	b.WriteString("❌ 賣出條件：RSI &gt; 70 (短線過熱)。\n")
	return b.String()
}

// SplitMessage cuts text into chunks of at most limit runes, breaking at
// line ends where possible.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		lr := []rune(line)
		if len(cur)+len(lr) > limit {
			flush()
		}
		for len(lr) > limit {
			chunks = append(chunks, string(lr[:limit]))
			lr = lr[limit:]
		}
		cur = append(cur, lr...)
	}
	flush()
	return chunks
}
