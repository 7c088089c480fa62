package rules

import (
	"testing"

	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/report"
)

func defaultSecurityRules(t *testing.T) []Rule {
	t.Helper()
	cfg := config.DefaultConfig()
	rs, err := securityRules(&cfg.Security)
	if err != nil {
		t.Fatalf("securityRules failed: %v", err)
	}
	return rs
}

func TestHardcodedSecretDetection(t *testing.T) {
	content := "import os\n" +
		"\n" +
		"# configuration\n" +
		"API_KEY = \"sk_test_1234567890abcdef\"\n" +
		"DEBUG = True\n"

	found := matchRules(t, defaultSecurityRules(t), "settings.py", content)

	matches, ok := found["security.hardcoded-secret.1"]
	if !ok {
		t.Fatalf("Expected a hardcoded secret match, got %v", found)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Snippet != `API_KEY = "sk_test_1234567890abcdef"` {
		t.Errorf("Unexpected snippet: %q", matches[0].Snippet)
	}

	for _, rule := range defaultSecurityRules(t) {
		if rule.ID == "security.hardcoded-secret.1" && rule.Severity != report.SeverityCritical {
			t.Errorf("Expected critical severity for hardcoded secrets, got %s", rule.Severity)
		}
	}
}

func TestAllowedSecretsAreSkipped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Security.AllowedSecrets = []string{"sk_test_1234567890abcdef"}

	rs, err := securityRules(&cfg.Security)
	if err != nil {
		t.Fatalf("securityRules failed: %v", err)
	}

	content := "API_KEY = \"sk_test_1234567890abcdef\"\n"
	found := matchRules(t, rs, "settings.py", content)

	if _, ok := found["security.hardcoded-secret.1"]; ok {
		t.Error("Allowlisted secret must not be reported")
	}
}

func TestSQLInjectionDetection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ruleID  string
	}{
		{
			name:    "f-string execute",
			content: "cursor.execute(f\"SELECT * FROM users WHERE id = {user_id}\")\n",
			ruleID:  "security.sql-injection.f-string",
		},
		{
			name:    "string concatenation",
			content: "query = \"SELECT * FROM users WHERE name = \" + name\n",
			ruleID:  "security.sql-injection.concatenation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := matchRules(t, defaultSecurityRules(t), "db.py", tt.content)
			if _, ok := found[tt.ruleID]; !ok {
				t.Errorf("Expected %s to match, got %v", tt.ruleID, found)
			}
		})
	}
}

func TestUnsafeDeserializationDetection(t *testing.T) {
	content := "import pickle\n" +
		"data = pickle.loads(payload)\n"

	found := matchRules(t, defaultSecurityRules(t), "loader.py", content)
	if _, ok := found["security.deserialization.pickle"]; !ok {
		t.Fatalf("Expected pickle deserialization match, got %v", found)
	}
}

func TestCodePatternsIgnoreComments(t *testing.T) {
	content := "# do not call eval(user_input) here\n" +
		"safe = parse(user_input)\n"

	found := matchRules(t, defaultSecurityRules(t), "safe.py", content)
	if _, ok := found["security.deserialization.eval"]; ok {
		t.Error("eval mentioned in a comment must not be reported")
	}
}

func TestCommandInjectionDetection(t *testing.T) {
	content := "import os\n" +
		"os.system(\"rm \" + user_path)\n"

	found := matchRules(t, defaultSecurityRules(t), "cleanup.py", content)
	if _, ok := found["security.command-injection.os-system"]; !ok {
		t.Fatalf("Expected os.system injection match, got %v", found)
	}
}
