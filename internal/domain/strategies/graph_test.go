package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rsiCrossGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "rsi1", Type: NodeIndicator, Kind: IndRSI, Params: map[string]string{"length": "14"}},
			{ID: "cond1", Type: NodeCondition, Kind: CondLessThan, Params: map[string]string{"value": "30"}},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "rsi1", To: "cond1"},
			{From: "cond1", To: "buy1"},
		},
	}
}

func TestParseGraph(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "rsi1", "type": "indicator", "kind": "rsi", "params": {"length": "14"}},
			{"id": "cond1", "type": "condition", "kind": "less_than", "params": {"value": "30"}},
			{"id": "buy1", "type": "action", "kind": "buy"}
		],
		"connections": [
			{"from": "rsi1", "to": "cond1"},
			{"from": "cond1", "to": "buy1"}
		]
	}`)

	g, err := ParseGraph(raw)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Connections, 2)
}

func TestParseGraphRejectsBadJSON(t *testing.T) {
	_, err := ParseGraph([]byte(`{not json`))
	assert.Error(t, err)
}

func TestValidateRejectsEmptyGraph(t *testing.T) {
	g := &Graph{}
	assert.Error(t, g.Validate())
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	g := rsiCrossGraph()
	g.Nodes[0].Kind = "stochastic"
	assert.Error(t, g.Validate())
}

func TestValidateRejectsDuplicateNodeIDs(t *testing.T) {
	g := rsiCrossGraph()
	g.Nodes[1].ID = "rsi1"
	assert.Error(t, g.Validate())
}

func TestValidateRejectsUnknownConnectionEndpoint(t *testing.T) {
	g := rsiCrossGraph()
	g.Connections = append(g.Connections, Connection{From: "ghost", To: "buy1"})
	assert.Error(t, g.Validate())
}

func TestValidateRejectsActionWithoutCondition(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
	}
	assert.Error(t, g.Validate())
}

func TestValidateRejectsIndicatorIntoAction(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "rsi1", Type: NodeIndicator, Kind: IndRSI},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "rsi1", To: "buy1"},
		},
	}
	assert.Error(t, g.Validate())
}

func TestValidateCrossoverNeedsTwoInputs(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "sma1", Type: NodeIndicator, Kind: IndSMA},
			{ID: "cross1", Type: NodeCondition, Kind: CondCrossover},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "sma1", To: "cross1"},
			{From: "cross1", To: "buy1"},
		},
	}
	assert.Error(t, g.Validate())

	g.Nodes = append(g.Nodes, Node{ID: "sma2", Type: NodeIndicator, Kind: IndSMA, Params: map[string]string{"length": "50"}})
	g.Connections = append(g.Connections, Connection{From: "sma2", To: "cross1"})
	assert.NoError(t, g.Validate())
}

func TestValidateRiskOnlyReceivesActions(t *testing.T) {
	g := rsiCrossGraph()
	g.Nodes = append(g.Nodes, Node{ID: "sl1", Type: NodeRisk, Kind: RiskStopLoss})
	g.Connections = append(g.Connections, Connection{From: "buy1", To: "sl1"})
	assert.NoError(t, g.Validate())

	g.Connections[len(g.Connections)-1] = Connection{From: "rsi1", To: "sl1"}
	assert.Error(t, g.Validate())
}

func TestHasPremiumNodes(t *testing.T) {
	g := rsiCrossGraph()
	assert.False(t, g.HasPremiumNodes())

	g.Nodes = append(g.Nodes, Node{ID: "macd1", Type: NodeIndicator, Kind: IndMACD})
	assert.True(t, g.HasPremiumNodes())
}
