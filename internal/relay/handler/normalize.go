package handler

// Initiator extensions disagree on field names: some send userId, some
// UserId, some just u. All known spellings are collapsed onto the
// canonical keys here, once, at the boundary. The relay core never
// sees an alias.

var metaAliases = map[string][]string{
	"userId":        {"userId", "subjectId", "UserId", "u"},
	"transactionId": {"transactionId", "TransactionId", "t"},
	"awsWafToken":   {"awsWafToken", "aws"},
	"visitorId":     {"visitorId", "visitor"},
}

// normalizeMeta maps alias spellings onto canonical keys and copies
// every unrecognized field through untouched. pageURL, when non-empty,
// records the initiator page the request came from.
func normalizeMeta(meta map[string]any, pageURL string) map[string]any {
	aliasOf := make(map[string]string)
	for canonical, spellings := range metaAliases {
		for _, spelling := range spellings {
			aliasOf[spelling] = canonical
		}
	}

	out := make(map[string]any, len(meta)+1)

	for key, value := range meta {
		if _, isAlias := aliasOf[key]; isAlias {
			continue
		}
		out[key] = value
	}

	// First non-empty spelling wins, in declared priority order.
	for canonical, spellings := range metaAliases {
		for _, spelling := range spellings {
			if v, ok := meta[spelling]; ok && v != nil && v != "" {
				out[canonical] = v
				break
			}
		}
	}

	if pageURL != "" {
		out["pageUrl"] = pageURL
	}

	return out
}
