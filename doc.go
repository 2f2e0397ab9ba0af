// Package permsearch searches structured ±1 matrices for the smallest positive
// permanent and compares what it finds with Kräuter's conjectured value
// 2^(n − ⌊log₂(n+1)⌋).
//
// The module is organised as one package per concern:
//
//	matrix/      ±1 Dense storage, structural families, builders, set notation
//	indexset/    canonical enumeration of a family's index sets, ranks, ratio filters
//	permanent/   exact permanents: Ryser with Gray code, naive cross-check
//	conjecture/  Kräuter value and verdicts
//	search/      exhaustive, random and annealing drivers with observer hooks
//	parallel/    rank, ratio and replicate sharding over errgroup workers, merge
//	runlog/      line-atomic session log shared by concurrent shards
//	metrics/     Prometheus collectors fed by the observer hooks
//	report/      XLSX, TSV and Markdown result files
//	store/       SQLite run history
//	config/      YAML run configuration
//	cmd/permsearch  the command-line front end
//
// Membership convention: an index in the set makes every cell it governs +1,
// an absent index makes them −1.
//
// Quick example:
//
//	m, _ := matrix.HankelFromSet(3, matrix.NewIndexSet(0, 2, 4))
//	p, _ := permanent.Compute(m)   // 2
//	k, _ := conjecture.Krauter(3)  // 2
package permsearch
