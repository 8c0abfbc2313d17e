package symbol

// Sector represents a market sector.
type Sector string

const (
	SectorTech       Sector = "Tech"
	SectorFinance    Sector = "Finance"
	SectorHealthcare Sector = "Healthcare"
	SectorEnergy     Sector = "Energy"
	SectorConsumer   Sector = "Consumer"
	SectorIndustrial Sector = "Industrial"
	SectorStress     Sector = "Stress"
	SectorETF        Sector = "ETF"
)

// Symbol holds metadata for a simulated trading instrument. LotSize and
// ListedDate feed adapter.Instrument (spec.md §4.1 instrument_info) so that
// operation reports real per-symbol conventions instead of one constant
// repeated across the whole universe.
type Symbol struct {
	LocateCode          uint16
	Ticker              string
	Name                string
	Sector              Sector
	BasePrice           float64
	TickSize            float64
	VolatilityMultiplier float64
	IsStress            bool
	LotSize             int
	ListedDate          string // YYYYMMDD
}

// AllSymbols returns the 30 fake symbols across 7 sectors + ETFs.
func AllSymbols() []Symbol {
	return []Symbol{
		// Tech (6) — mid-high volatility
		{1, "NEXO", "Nexo Dynamics Inc", SectorTech, 185.00, 0.01, 1.4, false, 100, "20150312"},
		{2, "QBIT", "Qbit Quantum Corp", SectorTech, 92.50, 0.01, 1.6, false, 100, "20180719"},
		{3, "FLUX", "Flux Systems Ltd", SectorTech, 310.00, 0.01, 1.3, false, 100, "20120604"},
		{4, "SYNK", "Synk Networks Inc", SectorTech, 67.25, 0.01, 1.5, false, 100, "20200108"},
		{5, "PULS", "Puls Digital Corp", SectorTech, 145.00, 0.01, 1.2, false, 100, "20160923"},
		{6, "CYRA", "Cyra Robotics Inc", SectorTech, 220.00, 0.01, 1.7, false, 100, "20190501"},

		// Finance (5) — low-mid volatility
		{7, "LEDG", "Ledger Capital Group", SectorFinance, 78.50, 0.01, 0.8, false, 100, "20051014"},
		{8, "VALT", "Vault Securities Inc", SectorFinance, 125.00, 0.01, 0.7, false, 100, "19980622"},
		{9, "CRDT", "Credt Financial Corp", SectorFinance, 52.00, 0.01, 0.9, false, 100, "20100305"},
		{10, "MNTX", "Mintex Banking Corp", SectorFinance, 165.00, 0.01, 0.6, false, 100, "19951107"},
		{11, "FNDX", "Fundex Asset Mgmt", SectorFinance, 88.75, 0.01, 0.8, false, 100, "20070819"},

		// Healthcare (4) — low volatility
		{12, "HELX", "Helix Biomedical Inc", SectorHealthcare, 195.00, 0.01, 0.5, false, 100, "20030415"},
		{13, "CURA", "Cura Therapeutics", SectorHealthcare, 72.00, 0.01, 0.6, false, 100, "20140902"},
		{14, "GENX", "GenX Genomics Corp", SectorHealthcare, 148.50, 0.01, 0.7, false, 100, "20171211"},
		{15, "BIOS", "Bios Pharma Ltd", SectorHealthcare, 55.25, 0.01, 0.5, false, 100, "20090630"},

		// Energy (4) — mid volatility
		{16, "VOLT", "Volt Energy Corp", SectorEnergy, 98.00, 0.01, 1.1, false, 100, "19990218"},
		{17, "SOLR", "Solaris Power Inc", SectorEnergy, 42.50, 0.01, 1.0, false, 100, "20130726"},
		{18, "FUSE", "Fuse Petroleum Ltd", SectorEnergy, 175.00, 0.01, 1.2, false, 100, "19921005"},
		{19, "WATT", "Watt Grid Systems", SectorEnergy, 63.00, 0.01, 1.0, false, 100, "20210414"},

		// Consumer (4) — low-mid volatility
		{20, "BRND", "Brand Global Inc", SectorConsumer, 112.00, 0.01, 0.8, false, 200, "20001120"},
		{21, "LUXE", "Luxe Retail Corp", SectorConsumer, 285.00, 0.01, 0.7, false, 200, "19970830"},
		{22, "DLVR", "Deliver Express Inc", SectorConsumer, 78.00, 0.01, 0.9, false, 200, "20190322"},
		{23, "RSTK", "Restock Supply Corp", SectorConsumer, 45.50, 0.01, 0.8, false, 200, "20220117"},

		// Industrial (4) — mid volatility
		{24, "FORG", "Forge Manufacturing", SectorIndustrial, 132.00, 0.01, 1.0, false, 500, "19880512"},
		{25, "BLDR", "Builder Heavy Ind", SectorIndustrial, 88.00, 0.01, 1.1, false, 500, "19941029"},
		{26, "MACH", "Mach Precision Corp", SectorIndustrial, 205.00, 0.01, 1.0, false, 500, "20061003"},
		{27, "ALOY", "Aloy Materials Inc", SectorIndustrial, 56.75, 0.01, 1.2, false, 500, "20160208"},

		// Stress (1) — always hot
		{28, "BLITZ", "Blitz Trading Corp", SectorStress, 125.00, 0.01, 2.0, true, 100, "20230601"},

		// ETFs (2) — low volatility, large creation-unit lot size
		{29, "MKTS", "Markets Broad ETF", SectorETF, 350.00, 0.01, 0.4, false, 50, "20050419"},
		{30, "GRWT", "Growth Select ETF", SectorETF, 180.00, 0.01, 0.5, false, 50, "20110930"},
	}
}

// ByTicker returns a map from ticker to symbol for quick lookups.
func ByTicker() map[string]*Symbol {
	syms := AllSymbols()
	m := make(map[string]*Symbol, len(syms))
	for i := range syms {
		m[syms[i].Ticker] = &syms[i]
	}
	return m
}

// ByLocate returns a map from locate code to symbol.
func ByLocate() map[uint16]*Symbol {
	syms := AllSymbols()
	m := make(map[uint16]*Symbol, len(syms))
	for i := range syms {
		m[syms[i].LocateCode] = &syms[i]
	}
	return m
}

// Sectors returns unique sectors in order.
func Sectors() []Sector {
	return []Sector{
		SectorTech, SectorFinance, SectorHealthcare,
		SectorEnergy, SectorConsumer, SectorIndustrial,
		SectorStress, SectorETF,
	}
}

// SymbolsBySector groups symbols by their sector.
func SymbolsBySector() map[Sector][]Symbol {
	syms := AllSymbols()
	m := make(map[Sector][]Symbol)
	for _, s := range syms {
		m[s.Sector] = append(m[s.Sector], s)
	}
	return m
}
