// Package matrixio reads and writes named matrices and keeps them in a
// bounded in-memory Registry.
//
// Three on-disk formats are supported, chosen by file extension:
//
//	.txt          "name rows cols" header followed by rows×cols numbers;
//	              several matrices may follow each other in one file
//	.yaml, .yml   {name, rows, cols, data: [[...], ...]}
//	.toml         same document as TOML
//
// Text output uses two decimals per value, so a text round trip is exact
// only for values representable that way.
package matrixio
