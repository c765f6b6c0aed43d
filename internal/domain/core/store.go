package core

// attachClients embeds each assignment's client, and each client's currency,
// from the given lookups. Unknown ids leave the pointer nil.
func attachClients(assignments []ClientAssignment, clients []Client, currencies []Currency) {
	currencyByID := make(map[string]Currency, len(currencies))
	for _, cur := range currencies {
		currencyByID[cur.ID] = cur
	}
	clientByID := make(map[string]Client, len(clients))
	for _, c := range clients {
		if cur, ok := currencyByID[c.CurrencyID]; ok {
			c.Currency = &cur
		}
		clientByID[c.ID] = c
	}
	for i := range assignments {
		if c, ok := clientByID[assignments[i].ClientID]; ok {
			assignments[i].Client = &c
		}
	}
}

func attachCurrency(client *Client, currencies []Currency) {
	for _, cur := range currencies {
		if cur.ID == client.CurrencyID {
			client.Currency = &cur
			return
		}
	}
}

func assignmentClientIDs(assignments []ClientAssignment) []string {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.ClientID]; ok || a.ClientID == "" {
			continue
		}
		seen[a.ClientID] = struct{}{}
		ids = append(ids, a.ClientID)
	}
	return ids
}

func clientCurrencyIDs(clients []Client) []string {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(clients))
	for _, c := range clients {
		if _, ok := seen[c.CurrencyID]; ok || c.CurrencyID == "" {
			continue
		}
		seen[c.CurrencyID] = struct{}{}
		ids = append(ids, c.CurrencyID)
	}
	return ids
}
