package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ForecastPayload is the normalized shape of a report's data artifact.
// Uploaded payloads have appeared in two incompatible JSON schemas over
// time; both are mapped onto this struct once at ingestion so nothing
// downstream has to probe optional fields.
type ForecastPayload struct {
	Agent             AgentInfo                    `json:"agent"`
	Forecast          ForecastSummary              `json:"forecast"`
	TechnicalAnalysis map[string]TechnicalAnalysis `json:"technicalAnalysis,omitempty"`
	MacroFundamentals MacroFundamentals            `json:"macroFundamentals"`
	EconomicCalendar  []CalendarEvent              `json:"economicCalendar,omitempty"`
	StrategicNotes    StrategicNotes               `json:"strategicNotes"`
}

type AgentInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

type ForecastSummary struct {
	Asset      string  `json:"asset"`
	Direction  string  `json:"direction"`
	Timeframe  string  `json:"timeframe"`
	Duration   string  `json:"duration"`
	Confidence float64 `json:"confidence"`
}

type TechnicalAnalysis struct {
	Trend      string     `json:"trend"`
	Support    float64    `json:"support"`
	Resistance float64    `json:"resistance"`
	Indicators Indicators `json:"indicators"`
}

type Indicators struct {
	RSI       float64 `json:"rsi"`
	MACD      string  `json:"macd"`
	Bollinger string  `json:"bollinger"`
}

type MacroFundamentals struct {
	EconomicOutlook string   `json:"economicOutlook"`
	MarketSentiment string   `json:"marketSentiment"`
	RiskFactors     []string `json:"riskFactors,omitempty"`
}

type CalendarEvent struct {
	Date     string `json:"date"`
	Event    string `json:"event"`
	Impact   string `json:"impact"`
	Forecast string `json:"forecast"`
}

type StrategicNotes struct {
	EntryStrategy  string `json:"entryStrategy"`
	RiskManagement string `json:"riskManagement"`
	ExitStrategy   string `json:"exitStrategy"`
}

// currentPayload is the schema produced by current export tooling.
type currentPayload struct {
	Agent struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Model   string `json:"model"`
	} `json:"agent"`
	Forecast struct {
		Asset      string      `json:"asset"`
		Direction  string      `json:"direction"`
		Timeframe  string      `json:"timeframe"`
		Duration   string      `json:"duration"`
		Confidence json.Number `json:"confidence"`
	} `json:"forecast"`
	TechnicalAnalysis map[string]struct {
		Trend      string      `json:"trend"`
		Support    json.Number `json:"support"`
		Resistance json.Number `json:"resistance"`
		Indicators struct {
			RSI       json.Number `json:"rsi"`
			MACD      string      `json:"macd"`
			Bollinger string      `json:"bollinger"`
		} `json:"indicators"`
	} `json:"technical_analysis"`
	MacroFundamentals struct {
		EconomicOutlook string   `json:"economic_outlook"`
		MarketSentiment string   `json:"market_sentiment"`
		RiskFactors     []string `json:"risk_factors"`
	} `json:"macro_fundamentals"`
	EconomicCalendar []CalendarEvent `json:"economic_calendar"`
	StrategicNotes   struct {
		EntryStrategy  string `json:"entry_strategy"`
		RiskManagement string `json:"risk_management"`
		ExitStrategy   string `json:"exit_strategy"`
	} `json:"strategic_notes"`
}

// legacyPayload is the schema produced by the first-generation exporter.
// Same concepts, different names: "prediction" instead of "forecast",
// levels nested under "levels", confidence as a percent string.
type legacyPayload struct {
	Agent struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Model   string `json:"model"`
	} `json:"agent"`
	Prediction struct {
		Symbol     string `json:"symbol"`
		Outlook    string `json:"outlook"`
		Horizon    string `json:"horizon"`
		Duration   string `json:"duration"`
		Confidence string `json:"confidence_pct"`
	} `json:"prediction"`
	Technicals map[string]struct {
		Trend  string `json:"trend"`
		Levels struct {
			Support    json.Number `json:"support"`
			Resistance json.Number `json:"resistance"`
		} `json:"levels"`
		Indicators struct {
			RSI       json.Number `json:"rsi"`
			MACD      string      `json:"macd"`
			Bollinger string      `json:"bollinger"`
		} `json:"indicators"`
	} `json:"technicals"`
	Macro struct {
		Outlook   string   `json:"outlook"`
		Sentiment string   `json:"sentiment"`
		Risks     []string `json:"risks"`
	} `json:"macro"`
	Calendar []CalendarEvent `json:"calendar"`
	Notes    struct {
		Entry string `json:"entry"`
		Risk  string `json:"risk"`
		Exit  string `json:"exit"`
	} `json:"notes"`
}

// NormalizePayload maps a raw data artifact onto ForecastPayload. It
// recognizes the current and legacy schemas by their top-level keys.
// Valid JSON in an unrecognized shape yields (nil, nil): such payloads
// are stored and served verbatim, just without a structured view.
// Invalid JSON is an error.
func NormalizePayload(raw []byte) (*ForecastPayload, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if _, ok := probe["forecast"]; ok {
		return normalizeCurrent(raw)
	}
	if _, ok := probe["prediction"]; ok {
		return normalizeLegacy(raw)
	}
	return nil, nil
}

func normalizeCurrent(raw []byte) (*ForecastPayload, error) {
	var p currentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	out := &ForecastPayload{
		Agent: AgentInfo(p.Agent),
		Forecast: ForecastSummary{
			Asset:      p.Forecast.Asset,
			Direction:  p.Forecast.Direction,
			Timeframe:  p.Forecast.Timeframe,
			Duration:   p.Forecast.Duration,
			Confidence: parseConfidence(p.Forecast.Confidence.String()),
		},
		MacroFundamentals: MacroFundamentals{
			EconomicOutlook: p.MacroFundamentals.EconomicOutlook,
			MarketSentiment: p.MacroFundamentals.MarketSentiment,
			RiskFactors:     p.MacroFundamentals.RiskFactors,
		},
		EconomicCalendar: p.EconomicCalendar,
		StrategicNotes: StrategicNotes{
			EntryStrategy:  p.StrategicNotes.EntryStrategy,
			RiskManagement: p.StrategicNotes.RiskManagement,
			ExitStrategy:   p.StrategicNotes.ExitStrategy,
		},
	}

	if len(p.TechnicalAnalysis) > 0 {
		out.TechnicalAnalysis = make(map[string]TechnicalAnalysis, len(p.TechnicalAnalysis))
		for asset, ta := range p.TechnicalAnalysis {
			out.TechnicalAnalysis[asset] = TechnicalAnalysis{
				Trend:      ta.Trend,
				Support:    numberOrZero(ta.Support),
				Resistance: numberOrZero(ta.Resistance),
				Indicators: Indicators{
					RSI:       numberOrZero(ta.Indicators.RSI),
					MACD:      ta.Indicators.MACD,
					Bollinger: ta.Indicators.Bollinger,
				},
			}
		}
	}

	return out, nil
}

func normalizeLegacy(raw []byte) (*ForecastPayload, error) {
	var p legacyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	out := &ForecastPayload{
		Agent: AgentInfo(p.Agent),
		Forecast: ForecastSummary{
			Asset:      p.Prediction.Symbol,
			Direction:  p.Prediction.Outlook,
			Timeframe:  p.Prediction.Horizon,
			Duration:   p.Prediction.Duration,
			Confidence: parseConfidence(p.Prediction.Confidence),
		},
		MacroFundamentals: MacroFundamentals{
			EconomicOutlook: p.Macro.Outlook,
			MarketSentiment: p.Macro.Sentiment,
			RiskFactors:     p.Macro.Risks,
		},
		EconomicCalendar: p.Calendar,
		StrategicNotes: StrategicNotes{
			EntryStrategy:  p.Notes.Entry,
			RiskManagement: p.Notes.Risk,
			ExitStrategy:   p.Notes.Exit,
		},
	}

	if len(p.Technicals) > 0 {
		out.TechnicalAnalysis = make(map[string]TechnicalAnalysis, len(p.Technicals))
		for asset, ta := range p.Technicals {
			out.TechnicalAnalysis[asset] = TechnicalAnalysis{
				Trend:      ta.Trend,
				Support:    numberOrZero(ta.Levels.Support),
				Resistance: numberOrZero(ta.Levels.Resistance),
				Indicators: Indicators{
					RSI:       numberOrZero(ta.Indicators.RSI),
					MACD:      ta.Indicators.MACD,
					Bollinger: ta.Indicators.Bollinger,
				},
			}
		}
	}

	return out, nil
}

// parseConfidence accepts "78", "78.5" or "78%".
func parseConfidence(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func numberOrZero(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}
