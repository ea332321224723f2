// Package catalog loads the analysis bookkeeping: process grouping, cross
// sections and the dataset registry assembled from one or more fragments.
//
// Dataset fragments are applied in lexical path order and a later fragment
// replaces any dataset group an earlier fragment already declared. Declaration
// order inside each document is preserved so downstream consumers iterate
// processes and dataset names the way the configuration lists them.
package catalog
