// Package i18n provides the translation seam descriptors depend on. A
// Translator resolves keys per locale; Bind narrows it to the single
// func(key) string a descriptor receives, so descriptors never touch
// process-wide state. Catalogs are flat key/message maps loaded from YAML or
// JSON files, with the en and cn catalogs embedded.
package i18n
