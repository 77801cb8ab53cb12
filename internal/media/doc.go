// Package media defines the media-file domain: extracted file details,
// delivery-rule validation, and display formatting helpers.
//
// The delivery rules encode the acceptance criteria for submitted media:
// standard frame dimensions, minimum frame rate and bitrates, file-size
// caps per kind, and a no-spaces file naming convention. Validate applies
// the rules to whatever fields the inspector managed to extract; unknown
// fields never fire a rule.
//
// This package is pure logic with no external dependencies — actually
// extracting details from files is the job of the mediainfo package.
package media
