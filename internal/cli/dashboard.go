package cli

import (
	"context"
	"fmt"

	"greensteps.app/greensteps/internal/core"
)

type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx *Context) error {
	reqCtx := context.Background()

	user, err := ctx.Bootstrap(reqCtx)
	if err != nil {
		return err
	}

	stats, err := ctx.Client.Progress(reqCtx)
	if err != nil {
		return err
	}

	// Insight failures are not surfaced; the dashboard just renders
	// without the coaching section.
	insights, err := ctx.Client.Insights(reqCtx)
	if err != nil {
		insights = nil
	}

	fmt.Fprintf(ctx.Out, "%s\n\n", headerStyle.Render(fmt.Sprintf("GreenSteps: welcome back, %s", user.Name)))
	fmt.Fprint(ctx.Out, RenderStats(stats))
	fmt.Fprint(ctx.Out, RenderProgressBar(stats.CompletionPercentage, progressBarWidth))
	fmt.Fprint(ctx.Out, RenderWeeklyChart(stats.WeeklyProgress))
	fmt.Fprint(ctx.Out, RenderInsights(insights))
	return nil
}

type InsightsCmd struct{}

func (c *InsightsCmd) Run(ctx *Context) error {
	reqCtx := context.Background()

	if _, err := ctx.Bootstrap(reqCtx); err != nil {
		return err
	}

	insights, err := ctx.Client.Insights(reqCtx)
	if err != nil {
		insights = []core.Insight{}
	}

	fmt.Fprint(ctx.Out, RenderInsights(insights))
	return nil
}
