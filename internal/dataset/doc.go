// Package dataset contains the dataset resolver. It turns the merged catalog
// plus a channel/mode selection into ordered signal and background file lists
// for a classification run, reporting any catalog references it had to skip.
package dataset
