// Package poster turns a movie title into a displayable image URL.
//
// Resolution never fails from the caller's point of view. A missing
// credential, a title the metadata service does not know, a payload without an
// image, and any transport or decoding failure all yield the configured
// placeholder. Only the last case attaches a Notice for the user.
package poster
