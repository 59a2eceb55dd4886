package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"weightlog/internal/app"
	"weightlog/internal/domain"
	"weightlog/internal/export"
	"weightlog/internal/seed"

	"github.com/spf13/cobra"
)

func parseWeight(s string) (float64, error) {
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, s)
	}
	return w, nil
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <kg>",
		Short: "Record a weight measurement",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			w, err := parseWeight(args[0])
			if err != nil {
				return err
			}
			e, err := rt.tracker.AddWeight(cmd.Context(), w)
			if err != nil {
				return err
			}
			rt.out.Fprintf(cmd.OutOrStdout(), "%s  %.1f kg  %+.1f  %s\n", e.ID, e.Weight, e.Diff, e.Trend)
			return nil
		}),
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List measurements, newest first",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			items := rt.tracker.Snapshot().History
			if limit > 0 && limit < len(items) {
				items = items[:limit]
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			rt.out.Fprintf(tw, "ID\tDATE\tWEIGHT\tDIFF\tTREND\n")
			for _, e := range items {
				rt.out.Fprintf(tw, "%s\t%s\t%.1f\t%+.1f\t%s\n", e.ID, e.Date, e.Weight, e.Diff, e.Trend)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries (0 = all)")
	return cmd
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <kg>",
		Short: "Change the weight of a measurement",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			w, err := parseWeight(args[1])
			if err != nil {
				return err
			}
			if err := rt.tracker.UpdateWeightEntry(cmd.Context(), args[0], w); err != nil {
				return err
			}
			rt.out.Fprintf(cmd.OutOrStdout(), "updated %s to %.1f kg\n", args[0], w)
			return nil
		}),
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a measurement",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(cmd *cobra.Command, args []string, rt *runtime) error {
			if err := rt.tracker.DeleteWeightEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			rt.out.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the profile",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			p := rt.tracker.Snapshot().Profile
			if p == nil {
				rt.out.Fprintf(cmd.OutOrStdout(), "no profile yet; run: weightlog profile set --name ...\n")
				return nil
			}
			printProfile(cmd, rt, p)
			return nil
		}),
	})

	var in domain.UserProfile
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the profile",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			p := domain.UserProfile{}
			if cur := rt.tracker.Snapshot().Profile; cur != nil {
				p = *cur
			}
			f := cmd.Flags()
			if f.Changed("name") {
				p.Name = in.Name
			}
			if f.Changed("gender") {
				p.Gender = in.Gender
			}
			if f.Changed("age") {
				p.Age = in.Age
			}
			if f.Changed("height") {
				p.Height = in.Height
			}
			if f.Changed("start") {
				p.StartWeight = in.StartWeight
			}
			if f.Changed("target") {
				p.TargetWeight = in.TargetWeight
			}
			if err := rt.tracker.SaveProfile(cmd.Context(), p); err != nil {
				return err
			}
			printProfile(cmd, rt, rt.tracker.Snapshot().Profile)
			return nil
		}),
	}
	setCmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	setCmd.Flags().StringVar(&in.Gender, "gender", "", "Gender")
	setCmd.Flags().IntVar(&in.Age, "age", 0, "Age in years")
	setCmd.Flags().IntVar(&in.Height, "height", 0, "Height in cm")
	setCmd.Flags().Float64Var(&in.StartWeight, "start", 0, "Start weight in kg")
	setCmd.Flags().Float64Var(&in.TargetWeight, "target", 0, "Target weight in kg")
	cmd.AddCommand(setCmd)

	return cmd
}

func printProfile(cmd *cobra.Command, rt *runtime, p *domain.UserProfile) {
	if p == nil {
		return
	}
	rt.out.Fprintf(cmd.OutOrStdout(), "Name:    %s\nGender:  %s\nAge:     %d\nHeight:  %d cm\nStart:   %.1f kg\nTarget:  %.1f kg\n",
		p.Name, p.Gender, p.Age, p.Height, p.StartWeight, p.TargetWeight)
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print current weight, goal progress and BMI",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			s := rt.tracker.Summary()
			w := cmd.OutOrStdout()
			rt.out.Fprintf(w, "Current:     %.1f kg\n", s.Current)
			rt.out.Fprintf(w, "Target:      %.1f kg\n", s.Target)
			rt.out.Fprintf(w, "From start:  %+.1f kg\n", s.FromStart)
			rt.out.Fprintf(w, "To target:   %+.1f kg\n", s.ToTarget)
			rt.out.Fprintf(w, "Entries:     %d\n", s.Entries)
			if s.BMI != nil {
				rt.out.Fprintf(w, "BMI:         %.1f (%s)\n", s.BMI.Value, s.BMI.Category)
			}
			return nil
		}),
	}
}

func chartCmd() *cobra.Command {
	var rangeFlag, unit string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print the daily weight series for a range",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			rng, err := app.ParseRange(rangeFlag)
			if err != nil {
				return err
			}
			points, err := app.NewChartsService(rt.tracker, rt.loc).Series(cmd.Context(), rng, unit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range points {
				if p.Weight == nil {
					rt.out.Fprintf(w, "%s  -\n", p.Label)
					continue
				}
				rt.out.Fprintf(w, "%s  %.1f %s\n", p.Label, p.Weight.Value, p.Weight.Unit)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&rangeFlag, "range", "W", "W, M or Y")
	cmd.Flags().StringVar(&unit, "unit", domain.UnitKg, "kg or lb")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history and profile to an .xlsx file",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			p := rt.tracker.Snapshot()
			if err := export.WriteXLSX(f, p.Profile, p.History, rt.loc); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			rt.out.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(p.History), out)
			return nil
		}),
	}
	cmd.Flags().StringVar(&out, "out", "weightlog.xlsx", "Output file")
	return cmd
}

func seedCmd() *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with demo data",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			opts.Now = time.Now().In(rt.loc)
			res, err := seed.Run(cmd.Context(), rt.store, opts)
			if err != nil {
				return err
			}
			rt.tracker.Load(cmd.Context())
			rt.out.Fprintf(cmd.OutOrStdout(), "seeded %d entries\n", len(res.Entries))
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.Days, "days", 30, "Days of history to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed (0 = random)")
	cmd.Flags().BoolVar(&opts.Profile, "profile", true, "Also create a profile when none exists")
	return cmd
}
