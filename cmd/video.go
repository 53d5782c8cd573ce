package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/output"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// Video command flags. Add and update share the metric flags; update only
// applies the ones that were set.
var (
	videoFlagCategory   string
	videoFlagDate       string
	videoFlagUpdateDate string
	videoFlagTitle      string
	videoFlagDuration   string
	videoFlagViews      int64
	videoFlagCTR        float64
	videoFlagRetention  float64
	videoFlagLikes      int64
	videoFlagComments   int64
	videoFlagCost       string
	videoFlagPlatforms  []string
	videoFlagURL        string
	videoFlagThumbnail  string
	videoFlagKeywords   []string
	videoFlagNotes      string
	videoFlagSort       string
	videoFlagYes        bool
)

// videoCmd represents the video command.
var videoCmd = &cobra.Command{
	Use:     "video",
	Aliases: []string{"videos", "v"},
	Short:   "Track published videos and their metrics",
	Long: `Track published videos. Revenue entries are linked to videos by title,
and every video gets an RPM, ROI and a 0-100 performance score.

Examples:
  creatorbook video add "Rainy Study Beats" --category Study --views 12000 --ctr 4.5 --retention 65
  creatorbook video list --sort score
  creatorbook video update 1a2b3c4d --views 15000`,
}

var videoAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideoAdd,
}

var videoListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List videos with linked revenue",
	RunE:    runVideoList,
}

var videoShowCmd = &cobra.Command{
	Use:               "show ID",
	Short:             "Show one video",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeVideoIDs,
	RunE:              runVideoShow,
}

var videoUpdateCmd = &cobra.Command{
	Use:               "update ID",
	Aliases:           []string{"edit"},
	Short:             "Update a video",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeVideoIDs,
	RunE:              runVideoUpdate,
}

var videoDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm"},
	Short:             "Delete a video",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeVideoIDs,
	RunE:              runVideoDelete,
}

var videoRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Relink every video to revenue and store the refreshed metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		videos, err := ctx.Videos.RecomputeMetrics(ctx.Revenue.List())
		if err != nil {
			return err
		}
		if ctx.IsJSON() {
			return output.PrintList(ctx.JSONFormatter(), videos)
		}
		ctx.CLIFormatter().Success(fmt.Sprintf("Recomputed metrics for %d videos", len(videos)))
		return nil
	},
}

func addVideoMetricFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&videoFlagCategory, "category", "c", "", "Category")
	f.StringVar(&videoFlagDuration, "duration", "", "Length, e.g. 1:02:00")
	f.Int64Var(&videoFlagViews, "views", 0, "View count")
	f.Float64Var(&videoFlagCTR, "ctr", 0, "Click-through rate in percent")
	f.Float64Var(&videoFlagRetention, "retention", 0, "Average retention in percent")
	f.Int64Var(&videoFlagLikes, "likes", 0, "Like count")
	f.Int64Var(&videoFlagComments, "comments", 0, "Comment count")
	f.StringVar(&videoFlagCost, "cost", "", "Production cost")
	f.StringSliceVar(&videoFlagPlatforms, "platform", nil, "Platforms the video is published on (repeatable)")
	f.StringVar(&videoFlagURL, "url", "", "YouTube URL")
	f.StringVar(&videoFlagThumbnail, "thumbnail", "", "Thumbnail URL")
	f.StringSliceVar(&videoFlagKeywords, "keyword", nil, "Keywords (repeatable)")
	f.StringVarP(&videoFlagNotes, "notes", "n", "", "Free-form notes")
	cmd.RegisterFlagCompletionFunc("category", completeCategories)
}

func init() {
	addVideoMetricFlags(videoAddCmd)
	videoAddCmd.Flags().StringVarP(&videoFlagDate, "date", "d", "today", "Publish date")
	videoAddCmd.MarkFlagRequired("category")

	addVideoMetricFlags(videoUpdateCmd)
	videoUpdateCmd.Flags().StringVarP(&videoFlagUpdateDate, "date", "d", "", "New publish date")
	videoUpdateCmd.Flags().StringVarP(&videoFlagTitle, "title", "t", "", "New title")

	videoListCmd.Flags().StringVarP(&videoFlagCategory, "category", "c", "", "Only videos in this category")
	videoListCmd.Flags().StringVarP(&videoFlagSort, "sort", "s", "date", "Sort by: date, revenue, score, views")
	videoListCmd.RegisterFlagCompletionFunc("category", completeCategories)

	videoDeleteCmd.Flags().BoolVarP(&videoFlagYes, "yes", "y", false, "Skip confirmation prompt")

	videoCmd.AddCommand(videoAddCmd, videoListCmd, videoShowCmd, videoUpdateCmd, videoDeleteCmd, videoRecomputeCmd)
	rootCmd.AddCommand(videoCmd)
}

func runVideoAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDay("publishDate", videoFlagDate)
	if err != nil {
		return err
	}
	v := &model.VideoEntry{
		Title:        args[0],
		Category:     videoFlagCategory,
		PublishDate:  date,
		Duration:     videoFlagDuration,
		Views:        videoFlagViews,
		CTR:          videoFlagCTR,
		Retention:    videoFlagRetention,
		Likes:        videoFlagLikes,
		Comments:     videoFlagComments,
		Platforms:    videoFlagPlatforms,
		YouTubeURL:   videoFlagURL,
		ThumbnailURL: videoFlagThumbnail,
		Keywords:     videoFlagKeywords,
		Notes:        videoFlagNotes,
	}
	if videoFlagCost != "" {
		if v.ProductionCost, err = validate.Amount("productionCost", videoFlagCost); err != nil {
			return err
		}
	}

	added, err := ctx.Videos.Add(v)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("created", added.ID, added)
	}
	ctx.CLIFormatter().Success("Video added")
	ctx.CLIFormatter().PrintVideo(added)
	return nil
}

// sortVideos orders videos in place by key, newest or highest first.
func sortVideos(videos []*model.VideoEntry, key string) error {
	var less func(a, b *model.VideoEntry) bool
	switch key {
	case "date", "":
		less = func(a, b *model.VideoEntry) bool { return a.PublishDate > b.PublishDate }
	case "revenue":
		less = func(a, b *model.VideoEntry) bool { return a.TotalRevenue.GreaterThan(b.TotalRevenue) }
	case "score":
		less = func(a, b *model.VideoEntry) bool { return a.PerformanceScore > b.PerformanceScore }
	case "views":
		less = func(a, b *model.VideoEntry) bool { return a.Views > b.Views }
	default:
		return errors.NewUserErrorWithField("sort", key, "unknown sort key", "Use date, revenue, score or views.")
	}
	sort.SliceStable(videos, func(i, j int) bool { return less(videos[i], videos[j]) })
	return nil
}

func runVideoList(cmd *cobra.Command, args []string) error {
	videos := ctx.Videos.List()
	if videoFlagCategory != "" {
		filtered := videos[:0]
		for _, v := range videos {
			if strings.EqualFold(v.Category, videoFlagCategory) {
				filtered = append(filtered, v)
			}
		}
		videos = filtered
	}
	if err := sortVideos(videos, videoFlagSort); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return output.PrintList(ctx.JSONFormatter(), videos)
	}
	ctx.CLIFormatter().PrintVideoList(videos)
	return nil
}

func videoIDs() []string {
	videos := ctx.Videos.List()
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

func runVideoShow(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], videoIDs(), errors.ErrVideoNotFound)
	if err != nil {
		return err
	}
	v, err := ctx.Videos.Get(id)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().Print(v)
	}
	ctx.CLIFormatter().PrintVideo(v)
	return nil
}

func runVideoUpdate(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], videoIDs(), errors.ErrVideoNotFound)
	if err != nil {
		return err
	}

	patch := model.VideoPatch{
		Title:        stringPtr(cmd, "title", videoFlagTitle),
		Category:     stringPtr(cmd, "category", videoFlagCategory),
		Duration:     stringPtr(cmd, "duration", videoFlagDuration),
		YouTubeURL:   stringPtr(cmd, "url", videoFlagURL),
		ThumbnailURL: stringPtr(cmd, "thumbnail", videoFlagThumbnail),
		Notes:        stringPtr(cmd, "notes", videoFlagNotes),
	}
	if changed(cmd, "date") {
		date, err := parseDay("publishDate", videoFlagUpdateDate)
		if err != nil {
			return err
		}
		patch.PublishDate = &date
	}
	if changed(cmd, "views") {
		patch.Views = &videoFlagViews
	}
	if changed(cmd, "ctr") {
		patch.CTR = &videoFlagCTR
	}
	if changed(cmd, "retention") {
		patch.Retention = &videoFlagRetention
	}
	if changed(cmd, "likes") {
		patch.Likes = &videoFlagLikes
	}
	if changed(cmd, "comments") {
		patch.Comments = &videoFlagComments
	}
	if changed(cmd, "cost") {
		cost, err := validate.Amount("productionCost", videoFlagCost)
		if err != nil {
			return err
		}
		patch.ProductionCost = &cost
	}
	if changed(cmd, "platform") {
		patch.Platforms = videoFlagPlatforms
	}
	if changed(cmd, "keyword") {
		patch.Keywords = videoFlagKeywords
	}

	v, err := ctx.Videos.Update(id, patch)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("updated", v.ID, v)
	}
	ctx.CLIFormatter().Success("Video updated")
	ctx.CLIFormatter().PrintVideo(v)
	return nil
}

func runVideoDelete(cmd *cobra.Command, args []string) error {
	id, err := resolveID(args[0], videoIDs(), errors.ErrVideoNotFound)
	if err != nil {
		return err
	}
	v, err := ctx.Videos.Get(id)
	if err != nil {
		return err
	}
	if !ctx.IsJSON() {
		ctx.CLIFormatter().Printf("%s (%s, %s)\n", v.Title, v.Category, v.PublishDate)
	}
	ok, err := promptConfirmation("Delete this video? Linked revenue is kept. (y/N): ", videoFlagYes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.CLIFormatter().Muted("Cancelled")
		return nil
	}

	deleted, err := ctx.Videos.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewNotFoundError(errors.ErrVideoNotFound.Kind, id)
	}
	return printDeleted("Video", id)
}
