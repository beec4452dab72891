package middlewares

import (
	"campusgate/src/directory"
	"campusgate/src/types"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const PersonKey = "person"

var errUnauthorized = errors.New("unauthorized")

func bearerToken(ctx *gin.Context) string {
	header := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// NewAuthMiddleware verifies the HS256 bearer token and loads the subject
// from the directory. The normalized person is stored under PersonKey.
// An empty jwtKey rejects every request.
func NewAuthMiddleware(dir directory.Directory, jwtKey []byte) gin.HandlerFunc {
	if len(jwtKey) == 0 {
		log.Println("[auth] Empty signing key, all requests will be rejected")
		return func(ctx *gin.Context) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized.Error()})
		}
	}
	return func(ctx *gin.Context) {
		reqToken := bearerToken(ctx)
		if reqToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized.Error()})
			return
		}
		claims := &types.Claims{}
		tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return jwtKey, nil
		})
		if err != nil || !tkn.Valid {
			if err != nil {
				log.Printf("token error: %s\n", err.Error())
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized.Error()})
			return
		}

		uid, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || uid == 0 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized.Error()})
			return
		}
		person, err := dir.GetUser(ctx.Request.Context(), uint(uid))
		if err != nil {
			if !errors.Is(err, directory.ErrNotFound) {
				log.Printf("[auth] Error loading user [%d]: %s\n", uid, err.Error())
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized.Error()})
			return
		}
		ctx.Set("id", person.ID)
		ctx.Set("email", person.Email)
		ctx.Set("role", string(person.Role))
		ctx.Set(PersonKey, person)
		ctx.Next()
	}
}

// CurrentPerson returns the authenticated person set by the auth middleware.
func CurrentPerson(ctx *gin.Context) *directory.Person {
	v, ok := ctx.Get(PersonKey)
	if !ok {
		return nil
	}
	p, _ := v.(*directory.Person)
	return p
}

// RequireRoles lets the request through only for the listed roles.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p := CurrentPerson(ctx)
		if p == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized.Error()})
			return
		}
		for _, r := range roles {
			if p.Role == r {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not allowed", "kind": "forbidden"})
	}
}

func SecureHeaders(ctx *gin.Context) {
	h := ctx.Writer.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	ctx.Next()
}
