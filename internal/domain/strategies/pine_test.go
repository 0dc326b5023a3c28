package strategies

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePineScriptRSIMeanReversion(t *testing.T) {
	g := rsiCrossGraph()

	script, err := GeneratePineScript("RSI Mean Reversion", g)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "//@version=5\n"))
	assert.Contains(t, script, `strategy("RSI Mean Reversion", overlay=true)`)
	assert.Contains(t, script, "rsi_rsi1 = ta.rsi(close, 14)")
	assert.Contains(t, script, "cond_cond1 = rsi_rsi1 < 30")
	assert.Contains(t, script, "if cond_cond1")
	assert.Contains(t, script, "strategy.entry(")
}

func TestGeneratePineScriptCrossover(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "fast", Type: NodeIndicator, Kind: IndSMA, Params: map[string]string{"length": "10"}},
			{ID: "slow", Type: NodeIndicator, Kind: IndSMA, Params: map[string]string{"length": "50"}},
			{ID: "x", Type: NodeCondition, Kind: CondCrossover},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "fast", To: "x"},
			{From: "slow", To: "x"},
			{From: "x", To: "buy1"},
		},
	}

	script, err := GeneratePineScript("Golden Cross", g)
	require.NoError(t, err)

	assert.Contains(t, script, "sma_fast = ta.sma(close, 10)")
	assert.Contains(t, script, "sma_slow = ta.sma(close, 50)")
	assert.Contains(t, script, "cond_x = ta.crossover(sma_fast, sma_slow)")
}

func TestGeneratePineScriptRiskExits(t *testing.T) {
	g := rsiCrossGraph()
	g.Nodes = append(g.Nodes,
		Node{ID: "sl", Type: NodeRisk, Kind: RiskStopLoss, Params: map[string]string{"percent": "3"}},
		Node{ID: "tp", Type: NodeRisk, Kind: RiskTakeProfit},
	)
	g.Connections = append(g.Connections,
		Connection{From: "buy1", To: "sl"},
		Connection{From: "buy1", To: "tp"},
	)

	script, err := GeneratePineScript("Managed", g)
	require.NoError(t, err)

	assert.Contains(t, script, "strategy.exit(\"stop\", stop=strategy.position_avg_price * (1 - 3 / 100))")
	assert.Contains(t, script, "strategy.exit(\"profit\", limit=strategy.position_avg_price * (1 + 10 / 100))")
}

func TestGeneratePineScriptCrossoverOperandOrder(t *testing.T) {
	// Connection order decides which series crosses over which, even
	// when it disagrees with the node IDs' lexicographic order.
	g := &Graph{
		Nodes: []Node{
			{ID: "zz_fast", Type: NodeIndicator, Kind: IndSMA, Params: map[string]string{"length": "10"}},
			{ID: "aa_slow", Type: NodeIndicator, Kind: IndSMA, Params: map[string]string{"length": "50"}},
			{ID: "x", Type: NodeCondition, Kind: CondCrossover},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "zz_fast", To: "x"},
			{From: "aa_slow", To: "x"},
			{From: "x", To: "buy1"},
		},
	}

	script, err := GeneratePineScript("Ordered", g)
	require.NoError(t, err)

	assert.Contains(t, script, "cond_x = ta.crossover(sma_zz_fast, sma_aa_slow)")
}

func TestGeneratePineScriptIndicatorComparison(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", Type: NodeIndicator, Kind: IndEMA},
			{ID: "b", Type: NodeIndicator, Kind: IndSMA},
			{ID: "gt", Type: NodeCondition, Kind: CondGreaterThan},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "a", To: "gt"},
			{From: "b", To: "gt"},
			{From: "gt", To: "buy1"},
		},
	}

	script, err := GeneratePineScript("EMA Above SMA", g)
	require.NoError(t, err)

	// Two inputs: the right-hand side is the second indicator.
	assert.Contains(t, script, "ema_a = ta.ema(close, 20)")
	assert.Contains(t, script, "cond_gt = ema_a > sma_b")
}

func TestGeneratePineScriptThresholdDefaults(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "rsi1", Type: NodeIndicator, Kind: IndRSI},
			{ID: "gt", Type: NodeCondition, Kind: CondGreaterThan},
			{ID: "buy1", Type: NodeAction, Kind: ActBuy},
		},
		Connections: []Connection{
			{From: "rsi1", To: "gt"},
			{From: "gt", To: "buy1"},
		},
	}

	script, err := GeneratePineScript("Defaults", g)
	require.NoError(t, err)

	// Missing params fall back: rsi length 14, threshold value 50.
	assert.Contains(t, script, "rsi_rsi1 = ta.rsi(close, 14)")
	assert.Contains(t, script, "cond_gt = rsi_rsi1 > 50")
}

func TestGeneratePineScriptDeterministic(t *testing.T) {
	g := rsiCrossGraph()

	first, err := GeneratePineScript("Repeatable", g)
	require.NoError(t, err)
	second, err := GeneratePineScript("Repeatable", g)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGeneratePineScriptRejectsInvalidGraph(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "rsi1", Type: NodeIndicator, Kind: IndRSI}}}
	_, err := GeneratePineScript("Broken", g)
	assert.Error(t, err)
}

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "rsi-mean-reversion", MakeSlug("RSI Mean Reversion"))
	assert.Equal(t, "golden-cross", MakeSlug("  Golden   Cross  "))
	assert.Equal(t, "strategy", MakeSlug("!!!"))
}
