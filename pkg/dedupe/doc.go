// Package dedupe provides the keys used to decide whether an article was
// already seen: a canonical URL with tracking parameters removed, a hash of
// the normalized title, and a placeholder near-duplicate fingerprint.
package dedupe
