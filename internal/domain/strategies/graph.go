package strategies

import (
	"encoding/json"
	"fmt"
)

// Node types as drawn in the editor.
const (
	NodeIndicator = "indicator"
	NodeCondition = "condition"
	NodeAction    = "action"
	NodeRisk      = "risk"
)

// Indicator kinds.
const (
	IndRSI   = "rsi"
	IndSMA   = "sma"
	IndEMA   = "ema"
	IndMACD  = "macd"
	IndBB    = "bb"
	IndClose = "close"
)

// Condition kinds.
const (
	CondCrossover   = "crossover"
	CondCrossunder  = "crossunder"
	CondGreaterThan = "greater_than"
	CondLessThan    = "less_than"
)

// Action kinds.
const (
	ActBuy  = "buy"
	ActSell = "sell"
)

// Risk kinds.
const (
	RiskStopLoss   = "stop_loss"
	RiskTakeProfit = "take_profit"
)

// Premium-only node kinds, locked for the free tier.
var premiumKinds = map[string]bool{
	IndMACD: true,
	IndBB:   true,
}

type Node struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Graph struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

var validKinds = map[string]map[string]bool{
	NodeIndicator: {IndRSI: true, IndSMA: true, IndEMA: true, IndMACD: true, IndBB: true, IndClose: true},
	NodeCondition: {CondCrossover: true, CondCrossunder: true, CondGreaterThan: true, CondLessThan: true},
	NodeAction:    {ActBuy: true, ActSell: true},
	NodeRisk:      {RiskStopLoss: true, RiskTakeProfit: true},
}

// ParseGraph decodes and validates a raw editor graph.
func ParseGraph(raw []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("invalid graph JSON: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the structural rules the editor enforces client-side.
// The server re-checks everything: graphs also arrive via the API.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}

	byID := make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node %d: missing id", i)
		}
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		kinds, ok := validKinds[n.Type]
		if !ok {
			return fmt.Errorf("node %q: unknown type %q", n.ID, n.Type)
		}
		if !kinds[n.Kind] {
			return fmt.Errorf("node %q: unknown %s kind %q", n.ID, n.Type, n.Kind)
		}
		byID[n.ID] = n
	}

	inbound := make(map[string][]string)
	for _, conn := range g.Connections {
		from, ok := byID[conn.From]
		if !ok {
			return fmt.Errorf("connection references unknown node %q", conn.From)
		}
		to, ok := byID[conn.To]
		if !ok {
			return fmt.Errorf("connection references unknown node %q", conn.To)
		}
		if err := validEdge(from, to); err != nil {
			return err
		}
		inbound[conn.To] = append(inbound[conn.To], conn.From)
	}

	hasAction := false
	for _, n := range g.Nodes {
		switch n.Type {
		case NodeAction:
			hasAction = true
			if len(inbound[n.ID]) == 0 {
				return fmt.Errorf("action %q has no triggering condition", n.ID)
			}
		case NodeCondition:
			need := 1
			if n.Kind == CondCrossover || n.Kind == CondCrossunder {
				need = 2
			}
			if len(inbound[n.ID]) < need {
				return fmt.Errorf("condition %q (%s) needs %d input(s), has %d", n.ID, n.Kind, need, len(inbound[n.ID]))
			}
		}
	}
	if !hasAction {
		return fmt.Errorf("graph has no action node")
	}

	return nil
}

// HasPremiumNodes reports whether the graph uses indicator kinds that are
// locked behind premium capabilities.
func (g *Graph) HasPremiumNodes() bool {
	for _, n := range g.Nodes {
		if premiumKinds[n.Kind] {
			return true
		}
	}
	return false
}

func validEdge(from, to *Node) error {
	switch to.Type {
	case NodeCondition:
		if from.Type != NodeIndicator {
			return fmt.Errorf("condition %q can only receive indicators, got %s %q", to.ID, from.Type, from.ID)
		}
	case NodeAction:
		if from.Type != NodeCondition {
			return fmt.Errorf("action %q can only receive conditions, got %s %q", to.ID, from.Type, from.ID)
		}
	case NodeRisk:
		if from.Type != NodeAction {
			return fmt.Errorf("risk %q can only receive actions, got %s %q", to.ID, from.Type, from.ID)
		}
	default:
		return fmt.Errorf("%s %q cannot receive connections", to.Type, to.ID)
	}
	return nil
}
