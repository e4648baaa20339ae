package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/floors"
	"github.com/elipaulman/hack-ohio-2025/ingest"
	"github.com/elipaulman/hack-ohio-2025/logger"
	"github.com/elipaulman/hack-ohio-2025/query"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "navctl",
		Short: "Build and query indoor floor navigation graphs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, _ := cmd.Flags().GetString("log-level")
			level, ok := logger.ParseLevel(lvl)
			if !ok {
				return fmt.Errorf("unknown log level %q", lvl)
			}
			logger.SetLogger(logger.NewText(level))
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug|info|warn|error")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build a floor graph from segments and labels and save a snapshot",
		Args:  cobra.NoArgs,
		RunE:  runBuild,
	}
	buildCmd.Flags().String("segments", "", "Segments file (.json or .svg)")
	buildCmd.Flags().String("labels", "", "Labeled points file (.csv or .json)")
	buildCmd.Flags().String("floor", "", "Floor name")
	buildCmd.Flags().String("out", "", "Snapshot output file")
	buildCmd.Flags().String("index", string(builder.IndexLinear), "Spatial index: linear|quadtree")
	buildCmd.Flags().Float64("ppu", builder.DefaultPixelsPerUnit, "Pixels per drawing unit")
	buildCmd.Flags().Bool("json", false, "Print machine-readable stats")
	for _, f := range []string{"segments", "floor", "out"} {
		_ = buildCmd.MarkFlagRequired(f)
	}

	routeCmd := &cobra.Command{
		Use:   "route <floor/room> <floor/room>",
		Short: "Find a route between two rooms",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoute,
	}
	addManifestFlags(routeCmd)
	routeCmd.Flags().Bool("accessible", false, "Only use elevator connectors")
	routeCmd.Flags().Bool("json", false, "Print the route as JSON")

	roomsCmd := &cobra.Command{
		Use:   "rooms <floor>",
		Short: "List the rooms of a floor",
		Args:  cobra.ExactArgs(1),
		RunE:  runRooms,
	}
	addManifestFlags(roomsCmd)
	roomsCmd.Flags().Bool("json", false, "Print machine-readable output")

	inspectCmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Show the contents of a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().Bool("json", false, "Print machine-readable output")

	rootCmd.AddCommand(buildCmd, routeCmd, roomsCmd, inspectCmd)
	return rootCmd
}

func addManifestFlags(cmd *cobra.Command) {
	cmd.Flags().String("manifest", "data/floors.json", "Floor manifest")
	cmd.Flags().String("stairs", "", "Stair table (default: built-in)")
	cmd.Flags().String("index", string(builder.IndexLinear), "Spatial index: linear|quadtree")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runBuild(cmd *cobra.Command, args []string) error {
	segPath, _ := cmd.Flags().GetString("segments")
	labelPath, _ := cmd.Flags().GetString("labels")
	floor, _ := cmd.Flags().GetString("floor")
	out, _ := cmd.Flags().GetString("out")
	indexName, _ := cmd.Flags().GetString("index")
	ppu, _ := cmd.Flags().GetFloat64("ppu")
	asJSON, _ := cmd.Flags().GetBool("json")

	opts := builder.DefaultOptions()
	kind, err := builder.ParseIndexKind(indexName)
	if err != nil {
		return err
	}
	opts.Index = kind
	opts.PixelsPerUnit = ppu

	segments, err := ingest.ReadSegmentsFile(segPath)
	if err != nil {
		return err
	}
	var labels []builder.LabeledPoint
	if labelPath != "" {
		if labels, err = ingest.ReadLabelsFile(labelPath); err != nil {
			return err
		}
	}

	begTime := time.Now()
	navData, err := builder.BuildAndSave(ingest.NormalizeFloor(floor), segments, labels, opts, out)
	if err != nil {
		return err
	}
	nq, err := query.NewNavigationQuery(navData, query.Options{})
	if err != nil {
		return err
	}
	stats := nq.GetStats()

	if asJSON {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Built %s in %v: %d nodes, %d edges, %d rooms\n", stats.Floor, time.Since(begTime), stats.NodeCount, stats.EdgeCount, stats.RoomCount)
	if len(stats.DisconnectedDoors) > 0 {
		fmt.Fprintf(w, "Disconnected doors: %s\n", strings.Join(stats.DisconnectedDoors, ", "))
	}
	fmt.Fprintf(w, "Saved to %s\n", out)
	return nil
}

func loadRegistry(cmd *cobra.Command) (*floors.Registry, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	stairsPath, _ := cmd.Flags().GetString("stairs")
	indexName, _ := cmd.Flags().GetString("index")

	kind, err := builder.ParseIndexKind(indexName)
	if err != nil {
		return nil, err
	}
	stairs, err := floors.DefaultStairTable()
	if stairsPath != "" {
		stairs, err = floors.LoadStairTableFile(stairsPath)
	}
	if err != nil {
		return nil, err
	}
	m, err := ingest.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	opts := floors.LoadOptions{Build: builder.DefaultOptions()}
	opts.Build.Index = kind
	reg, failed, err := floors.LoadRegistry(context.Background(), m, stairs, opts)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", failed)
	}
	return reg, nil
}

// parseEndpoint splits "floor/room".
func parseEndpoint(s string) (floor, room string, err error) {
	floor, room, ok := strings.Cut(s, "/")
	if !ok || floor == "" || room == "" {
		return "", "", fmt.Errorf("endpoint %q must be floor/room", s)
	}
	return floor, room, nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	accessible, _ := cmd.Flags().GetBool("accessible")
	asJSON, _ := cmd.Flags().GetBool("json")

	req := floors.RouteRequest{Mode: floors.ModeStairs}
	var err error
	if req.StartFloor, req.StartRoom, err = parseEndpoint(args[0]); err != nil {
		return err
	}
	if req.EndFloor, req.EndRoom, err = parseEndpoint(args[1]); err != nil {
		return err
	}
	if accessible {
		req.Mode = floors.ModeAccessible
	}

	reg, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	route, err := reg.FindRoute(req)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), route)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s/%s -> %s/%s: %.2f units\n", route.StartFloor, route.StartRoom, route.EndFloor, route.EndRoom, route.TotalDistance)
	for _, wp := range route.Waypoints {
		switch {
		case wp.Transition != nil:
			t := wp.Transition
			fmt.Fprintf(w, "  -- take %s %s (%s) to %s (%s)\n", t.Type, t.ExitStair, t.FromFloor, t.ArriveStair, t.ToFloor)
		default:
			fmt.Fprintf(w, "  %3d %-10s %-8s (%.2f, %.2f)\n", wp.Index, wp.Floor, wp.Label, wp.Coords.X, wp.Coords.Y)
		}
	}
	return nil
}

func runRooms(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	reg, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	nq, err := reg.Floor(args[0])
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"floor":      nq.Floor(),
			"rooms":      nq.Rooms(),
			"stairwells": nq.Stairwells(),
		})
	}
	for _, room := range nq.Rooms() {
		fmt.Fprintln(cmd.OutOrStdout(), room)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	info, err := builder.GetFileInfo(args[0])
	if err != nil {
		return err
	}
	nq, err := query.LoadAndQuery(args[0], query.Options{})
	if err != nil {
		return err
	}
	stats := nq.GetStats()

	if asJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"file":  info,
			"stats": stats,
		})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:        %s (%d bytes, %s)\n", info.Filename, info.FileSize, info.ModTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Floor:       %s\n", info.Floor)
	fmt.Fprintf(w, "Nodes:       %d\n", info.NodeCount)
	fmt.Fprintf(w, "Edges:       %d\n", info.EdgeCount)
	fmt.Fprintf(w, "Rooms:       %d\n", info.RoomCount)
	fmt.Fprintf(w, "Stairwells:  %s\n", strings.Join(nq.Stairwells(), ", "))
	if len(stats.DisconnectedDoors) > 0 {
		fmt.Fprintf(w, "Disconnected: %s\n", strings.Join(stats.DisconnectedDoors, ", "))
	}
	return nil
}
