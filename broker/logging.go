package broker

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// LogCall logs one formatted message for a connector operation. A "query"
// argument is logged verbatim; otherwise the arguments are summarised key by
// key, with map-valued arguments reduced to their sorted key sets.
func (c *Client) LogCall(method string, args map[string]any) {
	if !c.logging {
		return
	}

	if q, ok := args["query"]; ok && q != nil {
		c.logger.Info(fmt.Sprintf("%s called with query: %v", method, q))
		return
	}
	if len(args) == 0 {
		c.logger.Info(fmt.Sprintf("%s called", method))
		return
	}

	keys := lo.Keys(args)
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, summariseArg(k, args[k]))
	}
	c.logger.Info(fmt.Sprintf("%s called with %s", method, strings.Join(parts, ", ")))
}

func summariseArg(key string, value any) string {
	switch v := value.(type) {
	case map[string]string:
		return fmt.Sprintf("%s_keys=%v", key, sortedKeys(lo.Keys(v)))
	case map[string]any:
		return fmt.Sprintf("%s_keys=%v", key, sortedKeys(lo.Keys(v)))
	case url.Values:
		return fmt.Sprintf("%s_keys=%v", key, sortedKeys(lo.Keys(v)))
	case string:
		return fmt.Sprintf("%s=%q", key, v)
	default:
		return fmt.Sprintf("%s=%v", key, v)
	}
}

func sortedKeys(keys []string) []string {
	sort.Strings(keys)
	return keys
}
