/*
Package dprio provides a pure Go implementation of the Prio private aggregation
protocol extended with distributed differential privacy, following the DPrio
construction. Clients secret-share their measurements between two aggregation
servers along with a short zero-knowledge proof of validity, so that no single
server learns any individual measurement while invalid submissions are filtered
out. Differential privacy noise is contributed by the clients themselves and
selected by the servers through a commit-and-reveal protocol, so that the
released aggregate is differentially private without any server knowing the
noise that was applied.
*/
package dprio
