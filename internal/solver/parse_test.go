package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// resultsBlock mimics the tail of a real eigenvalue run transcript.
const resultsBlock = `
 =======================>     K EIGENVALUE SIMULATION     <=======================

  Bat./Gen.      k            Average k
  =========   ========   ====================
        1/1    1.04251
      100/1    1.01422    1.01237 +/- 0.00142

 ===============>     RESULTS     <===============

 k-effective (Collision)     = 1.01199 +/- 0.00209
 k-effective (Track-length)  = 1.01237 +/- 0.00142
 k-effective (Absorption)    = 1.01314 +/- 0.00108
 Combined k-effective        = 1.01293 +/- 0.00101
 Leakage Fraction            = 0.00000 +/- 0.00000
`

func TestParseOutput_PrefersCombinedEstimator(t *testing.T) {
	t.Parallel()

	result, err := ParseOutput(strings.NewReader(resultsBlock))

	require.NoError(t, err)
	require.InDelta(t, 1.01293, result.Keff, 1e-9)
	require.InDelta(t, 0.00101, result.StdDev, 1e-9)
	require.Empty(t, result.Warnings)
}

func TestParseOutput_TrackLengthFallback(t *testing.T) {
	t.Parallel()

	output := " k-effective (Track-length)  = 0.97342 +/- 0.00561\n"

	result, err := ParseOutput(strings.NewReader(output))

	require.NoError(t, err)
	require.InDelta(t, 0.97342, result.Keff, 1e-9)
	require.InDelta(t, 0.00561, result.StdDev, 1e-9)
}

func TestParseOutput_CollectsWarnings(t *testing.T) {
	t.Parallel()

	output := ` Warning: Negative value(s) found on probability table
 Combined k-effective        = 1.00021 +/- 0.00089
 Warning: could not find the cross sections XML file
`

	result, err := ParseOutput(strings.NewReader(output))

	require.NoError(t, err)
	require.Equal(t, []string{
		"Negative value(s) found on probability table",
		"could not find the cross sections XML file",
	}, result.Warnings)
	require.InDelta(t, 1.00021, result.Keff, 1e-9)
}

func TestParseOutput_MissingEigenvalue(t *testing.T) {
	t.Parallel()

	output := " Reading cross sections XML file...\n Simulation aborted.\n"

	_, err := ParseOutput(strings.NewReader(output))

	require.Error(t, err)
	require.Contains(t, err.Error(), "no k-effective estimate found")
}

func TestParseOutput_NonPhysicalEigenvalue(t *testing.T) {
	t.Parallel()

	output := " Combined k-effective        = 0.0 +/- 0.0\n"

	_, err := ParseOutput(strings.NewReader(output))

	require.Error(t, err)
	require.Contains(t, err.Error(), "non-physical k-effective")
}

func TestParseOutput_MalformedCombinedLine(t *testing.T) {
	t.Parallel()

	output := " Combined k-effective        = 1.0e +/- 0.001\n"

	_, err := ParseOutput(strings.NewReader(output))

	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed combined k-effective line")
}

func TestParseOutput_ScientificNotation(t *testing.T) {
	t.Parallel()

	output := " Combined k-effective        = 1.00510e+00 +/- 9.8e-04\n"

	result, err := ParseOutput(strings.NewReader(output))

	require.NoError(t, err)
	require.InDelta(t, 1.0051, result.Keff, 1e-9)
	require.InDelta(t, 0.00098, result.StdDev, 1e-9)
}
