// Package formats extracts asset file references from World of Warcraft
// chunked binary files.
//
// Terrain tiles (ADT) name their models, objects and textures in string-list
// chunks. Objects (WMO) name models in MODN and textures through material
// records (MOMT) that point into a string pool (MOTX). Models (M2) keep a
// texture table at a fixed header offset.
//
// Only the path strings are decoded; geometry and animation are not parsed.
package formats
