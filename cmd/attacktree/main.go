// attacktree is the command-line front end to the risk propagation engine:
// evaluate attack trees, validate proposed links, and classify nodes without
// running the HTTP server.
package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/taraforge/attacktree/pkg/engine"
	"github.com/taraforge/attacktree/pkg/feasibility"
	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/persist"
	"github.com/taraforge/attacktree/pkg/subtree"
	"github.com/taraforge/attacktree/pkg/topology"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "attacktree",
		Short:        "Attack tree risk propagation engine",
		Long:         "Evaluates attack potential and critical paths over attack-tree files.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newValidateLinkCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newRateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadTree(path string) (*graph.Graph, graph.ConfigSet, error) {
	g, configs, err := persist.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return g, graph.NewConfigSet(configs), nil
}

func newEvaluateCmd() *cobra.Command {
	var (
		file     string
		rootID   string
		residual bool
		asJSON   bool
		maxDepth int
		maxPaths int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a tree root's attack potential and critical paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, configs, err := loadTree(file)
			if err != nil {
				return err
			}

			ev := engine.NewEvaluator(g, configs, feasibility.Score,
				engine.WithLimits(engine.Limits{MaxDepth: maxDepth, MaxPaths: maxPaths}))
			result, err := ev.Evaluate(rootID, residual)
			if err != nil {
				return err
			}

			policy := feasibility.DefaultPolicy()
			if asJSON {
				return printJSON(cmd, struct {
					RootID string             `json:"root_id"`
					Mode   string             `json:"mode"`
					Rating feasibility.Rating `json:"rating,omitempty"`
					Result *engine.Result     `json:"result"`
				}{rootID, modeName(residual), ratingOf(policy, result), result})
			}

			if result == nil {
				cmd.Printf("root %s (%s): no attack path\n", rootID, modeName(residual))
				return nil
			}
			cmd.Printf("root %s (%s)\n", rootID, modeName(residual))
			cmd.Printf("  potential: time=%d expertise=%d knowledge=%d access=%d equipment=%d\n",
				result.Potential.Time, result.Potential.Expertise, result.Potential.Knowledge,
				result.Potential.Access, result.Potential.Equipment)
			cmd.Printf("  score: %d (%s)\n", result.Score, policy.RatingOf(result.Score))
			cmd.Printf("  critical paths (%d):\n", len(result.CriticalPaths))
			for _, path := range result.CriticalPaths {
				cmd.Printf("    %v\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Tree file (.yaml, .json, or .snappy)")
	cmd.Flags().StringVarP(&rootID, "root", "r", "", "Root node ID to evaluate")
	cmd.Flags().BoolVar(&residual, "residual", false, "Include circumvent subtrees (residual risk)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	cmd.Flags().IntVar(&maxDepth, "max-depth", engine.DefaultLimits().MaxDepth, "Recursion ceiling")
	cmd.Flags().IntVar(&maxPaths, "max-paths", engine.DefaultLimits().MaxPaths, "Critical path ceiling")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("root")
	return cmd
}

func newValidateLinkCmd() *cobra.Command {
	var file, sourceID, targetID string

	cmd := &cobra.Command{
		Use:   "validate-link",
		Short: "Check whether a source -> target edge would be legal",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loadTree(file)
			if err != nil {
				return err
			}

			gate, assign, err := topology.NewValidator().CheckLink(g, sourceID, targetID)
			if err != nil {
				cmd.Printf("rejected: %s\n", topology.ReasonOf(err))
				return err
			}
			if assign {
				cmd.Printf("allowed: parent gate becomes %s\n", gate)
			} else {
				cmd.Println("allowed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Tree file")
	cmd.Flags().StringVar(&sourceID, "source", "", "Parent node ID")
	cmd.Flags().StringVar(&targetID, "target", "", "Child node ID")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var file, nodeID string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Report a node's reusable-subtree membership",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loadTree(file)
			if err != nil {
				return err
			}

			classifier := subtree.NewClassifier(g)
			if root, ok := classifier.OwningCircumventRoot(nodeID); ok {
				cmd.Printf("circumvent subtree member (root %s)\n", root)
			}
			if root, ok := classifier.OwningTechnicalRoot(nodeID); ok {
				cmd.Printf("technical subtree member (root %s)\n", root)
			}
			if !classifier.IsCircumventMember(nodeID) && !classifier.IsTechnicalMember(nodeID) {
				cmd.Println("not a member of any reusable subtree")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Tree file")
	cmd.Flags().StringVar(&nodeID, "node", "", "Node ID")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("node")
	return cmd
}

func newRateCmd() *cobra.Command {
	var score int

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Map an attack potential score to its feasibility rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("score %d: %s\n", score, feasibility.DefaultPolicy().RatingOf(score))
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Summed attack potential score")
	cmd.MarkFlagRequired("score")
	return cmd
}

func printJSON(cmd *cobra.Command, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func ratingOf(policy feasibility.Policy, result *engine.Result) feasibility.Rating {
	if result == nil {
		return ""
	}
	return policy.RatingOf(result.Score)
}

func modeName(residual bool) string {
	if residual {
		return "residual"
	}
	return "initial"
}
