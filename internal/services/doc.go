// Package services defines the [Service] interface for streaming providers and implements it for Spotify, YouTube and Deezer.
//
// # Service Interface
//
// All providers implement one capability set: Identify, SearchTrack, CreatePlaylist, AddItems and DeletePlaylist.
// The pipeline in package tasks composes them into resolution and playlist building without knowing which provider it talks to.
// Implementations are stateless; the caller's [models.Credential] is passed into every call and never stored.
//
// # Query Dialects
//
// Search queries are strategy values ([QueryDialect]) rather than per-provider subclasses:
//   - [FieldQuery] : track:"<title>" artist:"<artist>" (Spotify, Deezer)
//   - [VideoQuery] : <artist> <title> official (YouTube)
//
// Every provider takes the first result only, with no relaxed retry.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2 over an [oauth2] static token client.
// Playlists are created private and tracks are added in chunks of 100.
//
// # YouTube Implementation
//
// [YouTubeService] uses the YouTube Data API v3 client (google.golang.org/api/youtube/v3).
// Videos are inserted one at a time, so a failed insert only skips that video.
//
// # Deezer Implementation
//
// [DeezerService] calls the Deezer REST API with resty, passing access_token as a query parameter.
// Deezer reports most failures as HTTP 200 with an error envelope, which is decoded and classified.
//
// # Error Handling
//
// Services wrap errors with sentinels from the shared package:
//   - [shared.ErrAuthRequired] : credential missing, expired or rejected
//   - [shared.ErrAPIRequest] : any other HTTP or decoding failure
package services
