// Command seeder submits a simulation to a running server and polls it to
// completion. It is a smoke test for a local deployment.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openmohaa/bracket-api/internal/models"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "API base URL")
	season := flag.Int("season", 2024, "season to simulate")
	runs := flag.Int("runs", 1000, "number of brackets")
	timeout := flag.Duration("timeout", 5*time.Minute, "how long to wait for the job")
	stream := flag.Bool("stream", false, "follow the job over a WebSocket instead of polling")
	flag.Parse()

	payload, err := json.Marshal(models.SimulationRequest{Season: *season, Runs: *runs})
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Post(*apiURL+"/simulations", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	fmt.Printf("Response Status: %s\n", resp.Status)
	fmt.Printf("Response Body: %s\n", string(body))
	if resp.StatusCode != http.StatusAccepted {
		log.Fatalf("Simulation was not accepted")
	}

	var accepted models.SimulationAccepted
	if err := json.Unmarshal(body, &accepted); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}

	if *stream {
		follow(*apiURL+"/simulations/"+accepted.ID+"/stream", *timeout)
		return
	}

	deadline := time.Now().Add(*timeout)
	for time.Now().Before(deadline) {
		time.Sleep(time.Second)

		status, err := fetchStatus(client, *apiURL+"/simulations/"+accepted.ID)
		if err != nil {
			log.Printf("Poll failed: %v", err)
			continue
		}

		switch status.Status {
		case models.JobDone:
			printChampions(status.Summary)
			return
		case models.JobFailed:
			log.Fatalf("Simulation %s failed: %s", status.ID, status.Error)
		default:
			fmt.Printf("Simulation %s is %s\n", status.ID, status.Status)
		}
	}
	log.Fatalf("Simulation %s did not finish within %v", accepted.ID, *timeout)
}

func follow(url string, timeout time.Duration) {
	url = "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Stream failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(timeout))

	for {
		var status models.JobStatus
		if err := conn.ReadJSON(&status); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			log.Fatalf("Stream read failed: %v", err)
		}
		switch status.Status {
		case models.JobDone:
			printChampions(status.Summary)
		case models.JobFailed:
			log.Fatalf("Simulation %s failed: %s", status.ID, status.Error)
		default:
			fmt.Printf("Simulation %s is %s\n", status.ID, status.Status)
		}
	}
}

func fetchStatus(client *http.Client, url string) (*models.JobStatus, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var status models.JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

func printChampions(summary *models.BracketSummary) {
	if summary == nil {
		fmt.Println("Simulation finished without a summary")
		return
	}
	teams := make([]int, 0, len(summary.Champions))
	for team := range summary.Champions {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return summary.Champions[teams[i]] > summary.Champions[teams[j]] })

	fmt.Printf("Champion odds over %d brackets:\n", summary.Runs)
	for i, team := range teams {
		if i == 10 {
			break
		}
		fmt.Printf("  %d  %5.1f%%\n", team, 100*summary.Champions[team])
	}
}
