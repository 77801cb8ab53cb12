// Package mediainfo wraps the MediaInfo CLI as an inspection service.
//
// The service invokes `mediainfo --Output=JSON <file>` and maps the
// General/Video/Image/Audio tracks of the JSON report onto media.Details,
// then applies the delivery-rule validation. MediaInfo serializes numeric
// fields as strings, so parsing tolerates both string and number forms.
//
// The binary path is configurable: the packaged application points it at
// the mediainfo binary bundled alongside the executable (installed by the
// build pipeline's toolinstall stage), while development builds resolve
// it from PATH.
package mediainfo
