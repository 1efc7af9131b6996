package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"greensteps.app/greensteps/internal/core"
)

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	if _, err := ctx.Bootstrap(context.Background()); err != nil {
		return err
	}

	habits, err := ctx.Client.Habits(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Out, RenderHabits(habits))
	return nil
}

type HabitAddCmd struct {
	Type        string `short:"t" help:"Habit type (preset|custom)." enum:"preset,custom," default:""`
	Name        string `short:"n" help:"Habit name."`
	Description string `short:"d" help:"Optional description."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if _, err := ctx.Bootstrap(context.Background()); err != nil {
		return err
	}

	if c.Name == "" {
		if err := c.promptHabit(ctx); err != nil {
			return err
		}
	}
	if c.Type == "" {
		c.Type = core.HabitTypeCustom
	}

	var description *string
	if c.Description != "" {
		description = &c.Description
	}

	habit, err := ctx.Client.CreateHabit(context.Background(), c.Type, c.Name, description)
	if err != nil {
		return err
	}

	// Refetch wholesale after the mutation, no local merge.
	habits, err := ctx.Client.Habits(context.Background())
	if err != nil {
		return err
	}
	stats, err := ctx.Client.Progress(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Logged %q (%s)\n", habit.HabitName, habit.HabitType)
	fmt.Fprintf(ctx.Out, "%d habits total, %d-day streak\n", len(habits), stats.CurrentStreak)
	return nil
}

// promptHabit runs the interactive add form: pick a preset from the
// catalog or enter a custom habit.
func (c *HabitAddCmd) promptHabit(ctx *Context) error {
	presets, err := ctx.Client.PresetHabits(context.Background())
	if err != nil {
		return err
	}

	const customChoice = "__custom__"
	options := make([]huh.Option[string], 0, len(presets)+1)
	for _, p := range presets {
		options = append(options, huh.NewOption(p.Name, p.Name))
	}
	options = append(options, huh.NewOption("Custom habit...", customChoice))

	var choice string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("What did you do today?").
			Options(options...).
			Value(&choice),
	)).Run(); err != nil {
		return err
	}

	if choice != customChoice {
		c.Type = core.HabitTypePreset
		c.Name = choice
		for _, p := range presets {
			if p.Name == choice {
				c.Description = p.Description
				break
			}
		}
		return nil
	}

	c.Type = core.HabitTypeCustom
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Habit name").
			Value(&c.Name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("habit name cannot be empty")
				}
				return nil
			}),
		huh.NewInput().
			Title("Description (optional)").
			Value(&c.Description),
	)).Run()
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"ID of the habit to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	if _, err := ctx.Bootstrap(context.Background()); err != nil {
		return err
	}

	if err := ctx.Client.DeleteHabit(context.Background(), c.ID); err != nil {
		return err
	}

	// Same unconditional refetch pattern as create.
	habits, err := ctx.Client.Habits(context.Background())
	if err != nil {
		return err
	}
	if _, err := ctx.Client.Progress(context.Background()); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Deleted habit, %d remaining\n", len(habits))
	return nil
}
