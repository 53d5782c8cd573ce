package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/report"
)

// filterPrefix keeps the candidates starting with toComplete. A candidate
// may carry a tab-separated description.
func filterPrefix(candidates []string, toComplete string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.Split(c, "\t")[0], toComplete) {
			out = append(out, c)
		}
	}
	return out
}

// completeRevenueIDs returns a completion function for revenue entry ids.
func completeRevenueIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil || ctx.Revenue == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, e := range ctx.Revenue.List() {
		ids = append(ids, e.ID+"\t"+e.Date+" "+e.Platform+" "+e.Amount.StringFixed(2))
	}
	return filterPrefix(ids, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeVideoIDs returns a completion function for video ids.
func completeVideoIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil || ctx.Videos == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, v := range ctx.Videos.List() {
		ids = append(ids, v.ID+"\t"+v.Title)
	}
	return filterPrefix(ids, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeScheduleIDs returns a completion function for scheduled report ids.
func completeScheduleIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil || ctx.Schedules == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, s := range ctx.Schedules.List() {
		ids = append(ids, s.ID+"\t"+s.Name)
	}
	return filterPrefix(ids, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeEventIDs returns a completion function for calendar event ids.
func completeEventIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil || ctx.Calendar == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, e := range ctx.Calendar.List() {
		ids = append(ids, e.ID+"\t"+e.Date+" "+e.Title)
	}
	return filterPrefix(ids, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completePlatforms suggests the platforms already used.
func completePlatforms(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil || ctx.Revenue == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	seen := map[string]bool{}
	var platforms []string
	for _, e := range ctx.Revenue.List() {
		if !seen[e.Platform] {
			seen[e.Platform] = true
			platforms = append(platforms, e.Platform)
		}
	}
	return filterPrefix(platforms, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeCategories suggests the built-in and configured categories.
func completeCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	categories := model.DefaultCategories
	if ctx != nil && ctx.Settings != nil {
		categories = ctx.Settings.Get().Categories()
	}
	return filterPrefix(categories, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeReportTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var types []string
	for _, t := range report.Templates {
		types = append(types, string(t.Type)+"\t"+t.Title)
	}
	return filterPrefix(types, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completePeriods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var kinds []string
	for _, k := range report.PeriodKinds {
		kinds = append(kinds, string(k))
	}
	return filterPrefix(kinds, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var formats []string
	for _, f := range model.ReportFormats {
		formats = append(formats, string(f))
	}
	return filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeFrequencies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var freqs []string
	for _, f := range model.Frequencies {
		freqs = append(freqs, string(f))
	}
	return filterPrefix(freqs, toComplete), cobra.ShellCompDirectiveNoFileComp
}
