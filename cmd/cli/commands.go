package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	leaderboardCategory string
	leaderboardLimit    int
	playerID            string
)

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardCategory, "category", "wins", "Category to rank by (wins, kills, games, placement, kd, winrate)")
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 10, "Number of entries to fetch")
	playerCmd.Flags().StringVar(&playerID, "id", "", "Player UUID")
	playerCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Fetch a ranked leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		query.Set("category", leaderboardCategory)
		query.Set("limit", fmt.Sprintf("%d", leaderboardLimit))
		return performGetRequest("/leaderboard?" + query.Encode())
	},
}

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Fetch a single player's statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		query.Set("playerID", playerID)
		return performGetRequest("/player?" + query.Encode())
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the players in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/count")
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Force a flush of all dirty statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/flush")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
