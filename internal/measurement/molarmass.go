package measurement

// Molar masses in g/mol for pollutants observed as satellite column
// densities. Used by the unit normalizer's column-to-surface conversion.
var molarMasses = map[Pollutant]float64{
	PollutantNO2: 46.01,
	PollutantSO2: 64.07,
	PollutantO3:  48.00,
	PollutantCO:  28.01,
}

// MolarMass returns the molar mass of a pollutant in g/mol. The second
// return is false for pollutants without a tabulated mass (particulate
// matter has no single molar mass).
func MolarMass(p Pollutant) (float64, bool) {
	m, ok := molarMasses[p]
	return m, ok
}
