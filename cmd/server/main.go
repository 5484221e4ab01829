// Command server runs one node of the causal-consistency replicated
// key-value store.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"causalkv/internal/config"
	"causalkv/internal/httpapi"
	"causalkv/internal/metrics"
	"causalkv/internal/replication"
	"causalkv/internal/transport"
)

const peerSendTimeout = 3 * time.Second

func main() {
	configPath := flag.String("config", "", "optional path to a JSON config file (NODE_ID/ADDRESS/PEERS env vars take precedence)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal configuration error: %v", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry, cfg.NodeID)

	peers := make([]transport.Peer, 0, len(cfg.Peers))
	for id, addr := range cfg.Peers {
		peers = append(peers, transport.Peer{ID: id, Addr: addr})
	}

	node := replication.New(cfg.NodeID, cfg.Members(), peers, transport.NewHTTPTransport(peerSendTimeout), m)
	defer node.Close()

	r := gin.Default()
	api := httpapi.New(node, registry)
	api.SetupRoutes(r)

	log.Printf("node %s starting on %s, peers=%v", cfg.NodeID, cfg.Address, cfg.Peers)
	log.Fatal(http.ListenAndServe(cfg.Address, r))
}
