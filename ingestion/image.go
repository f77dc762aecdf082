// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"net/url"
	"strings"

	"github.com/poiesic/newsroom/core"
)

const cdnFetchBase = "https://res.cloudinary.com/%s/image/fetch/f_auto,q_auto,w_800/"

// ImageResolver picks the image URL stored with a record. With a CDN cloud
// name configured, images are served through the CDN's remote fetch endpoint.
// A nil resolver behaves like one with no cloud configured.
type ImageResolver struct {
	cloudName string
}

// NewImageResolver returns a resolver for cloudName. An empty name disables the CDN.
func NewImageResolver(cloudName string) *ImageResolver {
	return &ImageResolver{cloudName: strings.TrimSpace(cloudName)}
}

// Resolve applies the image policy:
//   - a native image is CDN-wrapped when a cloud is configured, else kept verbatim
//   - without a native image, the article page is fetched through the CDN
//   - otherwise there is no image
func (r *ImageResolver) Resolve(article core.RawArticle) string {
	cloud := ""
	if r != nil {
		cloud = r.cloudName
	}

	if article.ImageURL != "" {
		if cloud == "" {
			return article.ImageURL
		}
		return cdnFetchURL(cloud, article.ImageURL)
	}
	if cloud != "" && article.URL != "" {
		return cdnFetchURL(cloud, article.URL)
	}
	return ""
}

// cdnFetchURL escapes raw as a single path segment; every reserved
// character, slashes included, is percent-encoded.
func cdnFetchURL(cloud, raw string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(raw), "+", "%20")
	return strings.Replace(cdnFetchBase, "%s", cloud, 1) + escaped
}
