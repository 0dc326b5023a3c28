package strategies

import (
	"fmt"
	"sort"
	"strings"
)

// GeneratePineScript compiles a validated graph into Pine Script v5.
// Output is deterministic: nodes are emitted in graph order, so the same
// graph always produces the same script (version snapshots rely on this).
func GeneratePineScript(name string, g *Graph) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}

	inbound := make(map[string][]string)
	for _, conn := range g.Connections {
		inbound[conn.To] = append(inbound[conn.To], conn.From)
	}

	var b strings.Builder
	b.WriteString("//@version=5\n")
	fmt.Fprintf(&b, "strategy(%q, overlay=true)\n\n", name)

	// Indicator series
	indicatorVar := make(map[string]string)
	for _, n := range g.Nodes {
		if n.Type != NodeIndicator {
			continue
		}
		v := pineIdent(n.Kind, n.ID)
		indicatorVar[n.ID] = v
		switch n.Kind {
		case IndRSI:
			fmt.Fprintf(&b, "%s = ta.rsi(close, %s)\n", v, param(n, "length", "14"))
		case IndSMA:
			fmt.Fprintf(&b, "%s = ta.sma(close, %s)\n", v, param(n, "length", "20"))
		case IndEMA:
			fmt.Fprintf(&b, "%s = ta.ema(close, %s)\n", v, param(n, "length", "20"))
		case IndMACD:
			fmt.Fprintf(&b, "[%s, %s_signal, _] = ta.macd(close, %s, %s, %s)\n",
				v, v, param(n, "fast", "12"), param(n, "slow", "26"), param(n, "signal", "9"))
		case IndBB:
			fmt.Fprintf(&b, "[%s_mid, %s, %s_lower] = ta.bb(close, %s, %s)\n",
				v, v, v, param(n, "length", "20"), param(n, "mult", "2"))
		case IndClose:
			fmt.Fprintf(&b, "%s = close\n", v)
		}
	}
	b.WriteString("\n")

	// Condition expressions
	conditionVar := make(map[string]string)
	for _, n := range g.Nodes {
		if n.Type != NodeCondition {
			continue
		}
		// Operand order is the order the user drew the connections:
		// the first input crosses over the second.
		inputs := inbound[n.ID]
		v := pineIdent("cond", n.ID)
		conditionVar[n.ID] = v

		switch n.Kind {
		case CondCrossover:
			fmt.Fprintf(&b, "%s = ta.crossover(%s, %s)\n", v, indicatorVar[inputs[0]], indicatorVar[inputs[1]])
		case CondCrossunder:
			fmt.Fprintf(&b, "%s = ta.crossunder(%s, %s)\n", v, indicatorVar[inputs[0]], indicatorVar[inputs[1]])
		case CondGreaterThan:
			fmt.Fprintf(&b, "%s = %s > %s\n", v, indicatorVar[inputs[0]], comparand(n, inputs, indicatorVar))
		case CondLessThan:
			fmt.Fprintf(&b, "%s = %s < %s\n", v, indicatorVar[inputs[0]], comparand(n, inputs, indicatorVar))
		}
	}
	b.WriteString("\n")

	// Entries and exits
	for _, n := range g.Nodes {
		if n.Type != NodeAction {
			continue
		}
		conds := make([]string, 0, len(inbound[n.ID]))
		for _, in := range inbound[n.ID] {
			conds = append(conds, conditionVar[in])
		}
		sort.Strings(conds)
		trigger := strings.Join(conds, " and ")

		switch n.Kind {
		case ActBuy:
			fmt.Fprintf(&b, "if %s\n    strategy.entry(%q, strategy.long)\n", trigger, pineIdent("long", n.ID))
		case ActSell:
			fmt.Fprintf(&b, "if %s\n    strategy.close_all(comment=%q)\n", trigger, pineIdent("exit", n.ID))
		}
	}

	// Risk management applies to all open positions
	for _, n := range g.Nodes {
		if n.Type != NodeRisk {
			continue
		}
		switch n.Kind {
		case RiskStopLoss:
			pct := param(n, "percent", "5")
			fmt.Fprintf(&b, "strategy.exit(\"stop\", stop=strategy.position_avg_price * (1 - %s / 100))\n", pct)
		case RiskTakeProfit:
			pct := param(n, "percent", "10")
			fmt.Fprintf(&b, "strategy.exit(\"profit\", limit=strategy.position_avg_price * (1 + %s / 100))\n", pct)
		}
	}

	return b.String(), nil
}

func param(n Node, key, def string) string {
	if n.Params != nil {
		if v, ok := n.Params[key]; ok && v != "" {
			return v
		}
	}
	return def
}

// comparand picks the right-hand side of a threshold comparison: a second
// indicator input when connected, otherwise the node's "value" param.
func comparand(n Node, inputs []string, vars map[string]string) string {
	if len(inputs) > 1 {
		return vars[inputs[1]]
	}
	return param(n, "value", "50")
}

var identReplacer = strings.NewReplacer("-", "_", " ", "_", ".", "_")

func pineIdent(prefix, id string) string {
	return prefix + "_" + identReplacer.Replace(strings.ToLower(id))
}
