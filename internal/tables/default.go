package tables

// MM-IM tables replaced in the simplified S/4HANA inventory management data model.
var (
	coreDocuments = map[string]string{
		"MKPF": "MATDOC",
		"MSEG": "MATDOC",
	}

	hybridTables = map[string]string{
		"MARC": "NSDM_V_MARC",
		"MARD": "NSDM_V_MARD",
		"MCHB": "NSDM_V_MCHB",
		"MKOL": "NSDM_V_MKOL",
		"MSLB": "NSDM_V_MSLB",
		"MSKA": "NSDM_V_MSKA",
		"MSPR": "NSDM_V_MSPR",
		"MSKU": "NSDM_V_MSKU",
	}

	aggregateTables = map[string]string{
		"MSSA": "NSDM_V_MSSA",
		"MSSL": "NSDM_V_MSSL",
		"MSSQ": "NSDM_V_MSSQ",
		"MSTB": "NSDM_V_MSTB",
		"MSTE": "NSDM_V_MSTE",
		"MSTQ": "NSDM_V_MSTQ",
	}

	dimpTables = map[string]string{
		"MCSD": "NSDM_V_MCSD",
		"MCSS": "NSDM_V_MCSS",
		"MSCD": "NSDM_V_MSCD",
		"MSFS": "NSDM_V_MSFS",
	}

	historyTables = map[string]string{
		"MARCH": "NSDM_V_MARCH",
		"MARDH": "NSDM_V_MARDH",
	}
)

var defaultBase = MustNew(DefaultEntries())

// DefaultEntries returns the built-in MM-IM entries across all groups.
func DefaultEntries() []Entry {
	groups := []struct {
		group  Group
		tables map[string]string
	}{
		{GroupCoreDocument, coreDocuments},
		{GroupHybrid, hybridTables},
		{GroupAggregate, aggregateTables},
		{GroupDIMP, dimpTables},
		{GroupHistory, historyTables},
	}

	var entries []Entry
	for _, g := range groups {
		for old, repl := range g.tables {
			entries = append(entries, Entry{Obsolete: old, Replacement: repl, Group: g.group})
		}
	}
	return entries
}

// Default returns the built-in knowledge base.
func Default() *KnowledgeBase {
	return defaultBase
}
