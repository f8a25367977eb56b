package memory

import (
	"strings"
	"testing"

	"labworks/testutil"
)

func TestImportsStayBelowTheService(t *testing.T) {
	forbidden := func(path string) bool {
		if path == "labworks/pkg/domain" {
			return false
		}
		return strings.HasPrefix(path, "labworks/") || testutil.PrefixForbidden("database/sql", "net/http")(path)
	}
	testutil.AssertNoDirectImports(t, ".", forbidden, "memory store depends only on the domain, id generation and the standard library")
}
