// Package metadata handles the XML metadata of a bag: the file list (metadata/files.xml)
// and the dataset description (metadata/dataset.xml).
package metadata
