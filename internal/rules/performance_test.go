package rules

import "testing"

func TestPerformanceRuleDetection(t *testing.T) {
	rs, err := performanceRules()
	if err != nil {
		t.Fatalf("performanceRules failed: %v", err)
	}

	tests := []struct {
		name    string
		content string
		ruleID  string
	}{
		{
			name:    "range over len",
			content: "for i in range(len(items)):\n    print(items[i])\n",
			ruleID:  "performance.loop.range-len",
		},
		{
			name:    "while re-checking len",
			content: "while len(queue) > 0:\n    queue.pop()\n",
			ruleID:  "performance.loop.while-len",
		},
		{
			name:    "list concat in place",
			content: "results += [compute(x)]\n",
			ruleID:  "performance.memory.list-concat",
		},
		{
			name:    "request comprehension",
			content: "pages = [requests.get(url) for url in urls]\n",
			ruleID:  "performance.io.request-in-loop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := matchRules(t, rs, "perf.py", tt.content)
			if _, ok := found[tt.ruleID]; !ok {
				t.Errorf("Expected %s to match, got %v", tt.ruleID, found)
			}
		})
	}
}

func TestPerformanceRulesIgnoreCleanCode(t *testing.T) {
	rs, err := performanceRules()
	if err != nil {
		t.Fatalf("performanceRules failed: %v", err)
	}

	content := "for item in items:\n" +
		"    process(item)\n" +
		"results.append(compute(item))\n"

	found := matchRules(t, rs, "clean.py", content)
	if len(found) != 0 {
		t.Errorf("Expected no performance findings, got %v", found)
	}
}
