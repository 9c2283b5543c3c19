package analyze

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

// systemPrompt is the base instruction set shared by all prompt variants.
var systemPrompt = strings.TrimSpace(dedent.Dedent(`
	あなたはダンプトラックの積載物を画像から分析し、重量を推定する専門AIです。

	## 厳守事項
	- 画像に写っていない情報を捏造しない
	- 不明な場合は推定不可として報告
	- 計算過程を必ず明示する

	## 重量計算式
	重量(t) = 体積(m³) × 密度(t/m³) × (1 - 空隙率)

	## 素材特性
	| 素材 | 密度(t/m³) | 空隙率 |
	|------|-----------|--------|
	| 土砂 | 1.8 | 5% |
	| As殻 | 2.5 | 30% |
	| Co殻 | 2.5 | 30% |
	| 開粒度As殻 | 2.35 | 35% |

	## 車両規格
	| 車種 | 最大積載量 | すり切り容量 | 山盛り容量 |
	|------|-----------|-------------|-----------|
	| 2tダンプ | 2.0t | 1.5m³ | 2.0m³ |
	| 4tダンプ | 4.0t | 2.0m³ | 2.4m³ |
	| 増トンダンプ | 6.5t | 3.5m³ | 4.5m³ |
	| 10tダンプ | 10.0t | 6.0m³ | 7.8m³ |

	## 分析手順
	1. 対象検出: ダンプトラック＋積載物が写っているか
	2. 車種判定: ナンバープレート、車体サイズから判定
	3. 素材判定: 色、質感、形状から判定
	4. 形状推定: 山の高さ(height)、荷台の長さ方向の充填率(fillRatioL)、
	   幅方向の充填率(fillRatioW)、締まり具合(packingDensity)を推定
	5. 重量計算: 上記計算式で算出

	## 出力形式
	JSON形式で以下のフィールドを返してください:
	{
	  "isTargetDetected": boolean,
	  "truckType": "2t" | "4t" | "増トン" | "10t",
	  "licensePlate": string | null,
	  "materialType": "土砂" | "As殻" | "Co殻" | "開粒度As殻",
	  "height": number,
	  "fillRatioL": number,
	  "fillRatioW": number,
	  "packingDensity": number,
	  "estimatedVolumeM3": number,
	  "estimatedTonnage": number,
	  "confidenceScore": number,
	  "reasoning": string,
	  "materialBreakdown": [{"material": string, "percentage": number, "density": number}]
	}
`))

// BuildAnalysisPrompt is the base single-image prompt.
func BuildAnalysisPrompt() string {
	return systemPrompt + "\n\n画像を分析し、JSON形式で結果を返してください。"
}

// BuildEstimationPrompt pre-fills known truck type and material so the model
// only estimates the pile geometry.
func BuildEstimationPrompt(truckType, materialType string) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(`
		%s

		車種は %s、素材は %s と確定しています。truckTypeとmaterialTypeには
		この値をそのまま返し、山の形状パラメータの推定に集中してください。
		画像を分析し、JSON形式で結果を返してください。
	`)), systemPrompt, truckType, materialType)
}

// GradedReference is one ground-truth-confirmed example injected into a
// staged prompt.
type GradedReference struct {
	GradeName     string
	ActualTonnage float64
	MaxCapacity   float64
	LoadRatio     float64
	Memo          string
}

// BuildStagedPrompt appends grade-diverse historical examples to the base
// prompt so the model can calibrate against confirmed loads of the same
// truck class. With no references it degrades to the base prompt.
func BuildStagedPrompt(references []GradedReference) string {
	if len(references) == 0 {
		return BuildAnalysisPrompt()
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n## 実測データ（同クラス車両の確定済み事例）\n")
	b.WriteString("| 等級 | 実測重量 | 最大積載量 | 積載率 | メモ |\n")
	b.WriteString("|------|---------|-----------|--------|------|\n")
	for _, ref := range references {
		memo := ref.Memo
		if memo == "" {
			memo = "-"
		}
		fmt.Fprintf(&b, "| %s | %.2ft | %.1ft | %.1f%% | %s |\n",
			ref.GradeName, ref.ActualTonnage, ref.MaxCapacity, ref.LoadRatio, memo)
	}
	b.WriteString("\n上記の実測事例を基準に積載率を見積もってください。\n")
	b.WriteString("画像を分析し、JSON形式で結果を返してください。")
	return b.String()
}
