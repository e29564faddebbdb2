package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/render"
)

var (
	region     string
	timeFilter string
	limit      int
	aiOnly     bool
	sessionID  string
	watchOnce  bool
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	prompt  = color.New(color.FgGreen, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search, fetch and rate results for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := loadApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		q, err := applyQueryFlags(application.Query(strings.Join(args, " ")))
		if err != nil {
			return err
		}

		result := application.Search(cmd.Context(), q)
		if !result.OK() {
			fmt.Fprintln(os.Stderr, color.YellowString("%s", result.Message))
		}
		fmt.Println(render.Table(result))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <query> <url>",
	Short: "Score the credibility of one URL for a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := loadApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		report := application.Validate(cmd.Context(), args[0], args[1])
		fmt.Println(heading("Credibility report"))
		fmt.Printf("  Domain trust:   %d\n", report.DomainTrust)
		fmt.Printf("  Relevance:      %d\n", report.Relevance)
		fmt.Printf("  Fact check:     %d\n", report.FactCheck)
		fmt.Printf("  Bias:           %d\n", report.Bias)
		fmt.Printf("  Citations:      %d\n", report.Citations)
		fmt.Printf("  Final score:    %.2f\n", report.FinalScore)
		fmt.Printf("  Rating:         %s\n", report.Icon)
		fmt.Printf("  Explanation:    %s\n", report.Explanation)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant; every message is searched first unless --ai-only",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		application, err := loadApplication(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		assistant := application.Assistant()
		if sessionID != "" {
			if err := assistant.Resume(ctx, sessionID); err != nil {
				return err
			}
		}

		fmt.Println(heading("IntelliSearch chat"), faint("session "+assistant.SessionID()))
		fmt.Println(faint("/reset starts over, /exit quits"))

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(prompt("> "))
			if !scanner.Scan() {
				return scanner.Err()
			}

			input := strings.TrimSpace(scanner.Text())
			switch input {
			case "":
				continue
			case "/exit", "/quit":
				return nil
			case "/reset":
				assistant.Reset()
				fmt.Println(faint("new session " + assistant.SessionID()))
				continue
			}

			var result domain.AggregateResult
			if !aiOnly {
				q, err := applyQueryFlags(application.Query(input))
				if err != nil {
					return err
				}
				result = application.Search(ctx, q)
			}

			reply, table := assistant.Answer(ctx, input, result, aiOnly)
			fmt.Println(reply)
			if !aiOnly {
				fmt.Println()
				fmt.Println(table)
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent chat sessions from the transcript store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := loadApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		ids, err := application.Sessions(cmd.Context(), 20)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Publish digests of the watched queries to Telegram on a schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := loadApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Watch(cmd.Context(), watchOnce)
	},
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, chatCmd} {
		c.Flags().StringVar(&region, "region", "", "Search region, e.g. us-en")
		c.Flags().StringVar(&timeFilter, "time", "", "Recency: day, week, month, year")
		c.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (1-10)")
	}
	chatCmd.Flags().BoolVar(&aiOnly, "ai-only", false, "Skip web search and answer from the conversation only")
	chatCmd.Flags().StringVar(&sessionID, "session", "", "Resume a stored session")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single digest pass and exit")

	rootCmd.AddCommand(searchCmd, validateCmd, chatCmd, sessionsCmd, watchCmd)
}

func applyQueryFlags(q domain.SearchQuery) (domain.SearchQuery, error) {
	if region != "" {
		q.Region = region
	}
	if timeFilter != "" {
		filter, err := domain.ParseTimeFilter(timeFilter)
		if err != nil {
			return q, err
		}
		q.TimeFilter = filter
	}
	if limit != 0 {
		q.Limit = limit
	}
	return q.Normalize(), nil
}
