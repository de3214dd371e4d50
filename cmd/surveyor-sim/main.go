package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

type liveLocation struct {
	SurveyorID string  `json:"surveyorId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Simulates one surveyor device walking a random path and posting live
// locations against a running server.
func main() {
	server := flag.String("server", "http://localhost:8080", "API base URL")
	surveyorID := flag.String("surveyor-id", "SUR1", "Surveyor identifier")
	username := flag.String("username", "sur1", "Basic auth username")
	password := flag.String("password", "passw", "Basic auth password")
	lat := flag.Float64("lat", 12.9716, "Starting latitude")
	lon := flag.Float64("lon", 77.5946, "Starting longitude")
	interval := flag.Duration("interval", 5*time.Second, "Interval between submissions")
	flag.Parse()

	rand.Seed(time.Now().UnixNano())
	client := &http.Client{Timeout: 10 * time.Second}
	curLat, curLon := *lat, *lon

	for {
		curLat += (rand.Float64() - 0.5) * 0.001
		curLon += (rand.Float64() - 0.5) * 0.001
		payload, err := json.Marshal(liveLocation{SurveyorID: *surveyorID, Latitude: curLat, Longitude: curLon})
		if err != nil {
			log.Fatalf("encode payload: %v", err)
		}
		req, err := http.NewRequest("POST", *server+"/api/live/location", bytes.NewReader(payload))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(*username, *password)
		resp, err := client.Do(req)
		if err != nil {
			log.Printf("submit failed: %v", err)
		} else {
			resp.Body.Close()
			fmt.Printf("submitted (%.6f, %.6f) -> %s\n", curLat, curLon, resp.Status)
		}
		time.Sleep(*interval)
	}
}
