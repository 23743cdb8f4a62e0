package processing

import (
	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/tool"
)

// plan is the upstream parameter set chosen for one tool invocation.
type plan struct {
	width, height int
	strength      float64
	promptSuffix  string
	scale         int
	analysis      *imaging.DamageAnalysis
	original      *imaging.Dimensions
	target        *imaging.Dimensions
}

type planner func(cfg *tool.ToolConfig, opts tool.Options, src imaging.Info, maxOutput int) plan

var planners = map[string]planner{
	"headshot": planHeadshot,
	"restore":  planRestore,
	"upscale":  planUpscale,
}

func planFor(cfg *tool.ToolConfig) planner {
	if p, ok := planners[cfg.PromptTemplate]; ok {
		return p
	}
	return planStatic
}

// planStatic uses the tool's configured dimensions and strength.
func planStatic(cfg *tool.ToolConfig, _ tool.Options, _ imaging.Info, _ int) plan {
	return plan{
		width:    orDefault(cfg.Processing.Width, 1024),
		height:   orDefault(cfg.Processing.Height, 1024),
		strength: cfg.Processing.Strength,
	}
}

func planHeadshot(cfg *tool.ToolConfig, opts tool.Options, src imaging.Info, maxOutput int) plan {
	p := planStatic(cfg, opts, src, maxOutput)
	p.width, p.height = 512, 512
	if format, _ := opts.String("outputFormat"); format == "portrait" {
		p.height = 640
	}
	return p
}

func planRestore(cfg *tool.ToolConfig, opts tool.Options, src imaging.Info, maxOutput int) plan {
	p := planStatic(cfg, opts, src, maxOutput)
	analysis := imaging.AnalyzeDamage()
	p.analysis = &analysis
	p.promptSuffix = analysis.DamageDescription
	return p
}

func planUpscale(cfg *tool.ToolConfig, opts tool.Options, src imaging.Info, maxOutput int) plan {
	p := planStatic(cfg, opts, src, maxOutput)
	resolution, _ := opts.String("targetResolution")
	p.scale = imaging.ScaleFactor(resolution)

	original := src.Dimensions()
	target := imaging.TargetDimensions(original, p.scale, maxOutput)
	p.original = &original
	p.target = &target
	p.width, p.height = target.Width, target.Height
	return p
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
