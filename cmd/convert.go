package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danmaku-sim/danmaku-sim/sim/workload"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between comment sources",
	Long:  "Convert built-in scenarios to workload spec YAML, or workload specs to comment documents. Output is written to stdout unless --out is set.",
}

// --- danmaku-sim convert scenario ---

var (
	scenarioName    string
	scenarioSeed    int64
	scenarioRate    float64
	scenarioHorizon float64
)

var convertScenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Write a built-in scenario as a workload spec",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := workload.Scenario(scenarioName, scenarioSeed, scenarioRate, scenarioHorizon)
		if err != nil {
			logrus.Fatalf("Scenario conversion failed: %v", err)
		}
		if err := writeSpec(os.Stdout, spec); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// --- danmaku-sim convert xml ---

var (
	xmlInput   inputFlags
	xmlOutPath string
	xmlChatID  string
)

var convertXMLCmd = &cobra.Command{
	Use:   "xml",
	Short: "Generate comments from a workload spec or scenario and write a comment document",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := xmlInput.load(cmd.Flags().Changed("seed"))
		if err != nil {
			logrus.Fatalf("Failed to load comments: %v", err)
		}
		out := io.Writer(os.Stdout)
		if xmlOutPath != "" {
			file, err := os.Create(xmlOutPath)
			if err != nil {
				logrus.Fatalf("Failed to create %s: %v", xmlOutPath, err)
			}
			defer func() { _ = file.Close() }()
			out = file
		}
		if err := writeDocument(out, in, xmlChatID); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeSpec marshals a WorkloadSpec to YAML.
func writeSpec(w io.Writer, spec *workload.WorkloadSpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("YAML marshal failed: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeDocument writes in's comments as a comment document. A document that
// was itself parsed keeps its metadata.
func writeDocument(w io.Writer, in *input, chatID string) error {
	doc := in.Document
	if doc == nil {
		doc = &workload.Document{Source: "k-v", MaxLimit: len(in.Comments)}
	}
	if chatID != "" {
		doc.ChatID = chatID
	}
	doc.Comments = in.Comments
	return workload.WriteXML(w, doc)
}

func init() {
	convertScenarioCmd.Flags().StringVar(&scenarioName, "name", "", fmt.Sprintf("Scenario name %v", workload.ScenarioNames()))
	convertScenarioCmd.Flags().Int64Var(&scenarioSeed, "seed", 42, "Seed")
	convertScenarioCmd.Flags().Float64Var(&scenarioRate, "rate", 10, "Comments per second")
	convertScenarioCmd.Flags().Float64Var(&scenarioHorizon, "horizon", 60, "Media seconds to generate")
	_ = convertScenarioCmd.MarkFlagRequired("name")

	xmlInput.register(convertXMLCmd.Flags())
	convertXMLCmd.Flags().StringVar(&xmlOutPath, "out", "", "Output path (stdout when empty)")
	convertXMLCmd.Flags().StringVar(&xmlChatID, "chat-id", "", "chatid written to the document")

	convertCmd.AddCommand(convertScenarioCmd)
	convertCmd.AddCommand(convertXMLCmd)

	rootCmd.AddCommand(convertCmd)
}
