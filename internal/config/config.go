// Package config loads a node's identity and peer map from the
// environment or a JSON file: NODE_ID, this node's listen address, and
// a static association from each peer's node id to its base URL. The
// peer map is fixed at startup — membership changes require a
// restart.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config is everything a node needs to know about itself and its
// peers at startup.
type Config struct {
	NodeID  string            `json:"node_id"`
	Address string            `json:"address"`
	Peers   map[string]string `json:"peers"` // peer node id -> base URL, excluding self
}

// Members returns every node id in the configuration, including self,
// sorted for deterministic iteration.
func (c Config) Members() []string {
	members := make([]string, 0, len(c.Peers)+1)
	members = append(members, c.NodeID)
	for id := range c.Peers {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// Validate checks for the configuration errors that should stop the
// process at startup rather than fail some request later: a missing
// NODE_ID, or a malformed peer map.
func (c Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("NODE_ID must be set")
	}
	if _, isPeer := c.Peers[c.NodeID]; isPeer {
		return fmt.Errorf("NODE_ID %q must not appear in its own peer map", c.NodeID)
	}
	for id, addr := range c.Peers {
		if id == "" || addr == "" {
			return fmt.Errorf("malformed peer map entry %q=%q", id, addr)
		}
	}
	return nil
}

// Load builds a Config from environment variables, falling back to
// the JSON file at configPath for any field the environment doesn't
// set. Pass an empty configPath to read environment only.
//
// Environment variables:
//
//	NODE_ID   this node's identifier
//	ADDRESS   this node's own listen address (host:port)
//	PEERS     "id=url,id=url,..." association of every other peer
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if v := os.Getenv("NODE_ID"); v != "" {
		cfg.NodeID = v
	}
	if v := os.Getenv("ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("PEERS"); v != "" {
		peers, err := parsePeers(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PEERS: %w", err)
		}
		cfg.Peers = peers
	}

	if cfg.Peers == nil {
		cfg.Peers = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parsePeers(s string) (map[string]string, error) {
	peers := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed peer entry %q, want id=url", entry)
		}
		peers[parts[0]] = parts[1]
	}
	return peers, nil
}
