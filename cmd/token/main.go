// token emite un JWT firmado con JWT_SECRET para operar la API de costeo.
//
// Uso: go run ./cmd/token -user u-1 -role bodeguero [-store tienda-norte]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Inventario-costeo/pkg/config"
	"github.com/jhoicas/Inventario-costeo/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "ID del usuario (obligatorio)")
	role := flag.String("role", jwt.RoleAuditor, "admin, bodeguero o auditor")
	storeID := flag.String("store", "", "limita los reportes a una tienda")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(2)
	}
	tok, err := issue(cfg.JWT, *userID, *storeID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Emitir token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

func issue(cfg config.JWTConfig, userID, storeID, role string) (string, error) {
	if userID == "" {
		return "", errors.New("usuario requerido")
	}
	switch role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleAuditor:
	default:
		return "", fmt.Errorf("rol desconocido %q", role)
	}
	return jwt.Generate(cfg.Secret, userID, storeID, role, cfg.Issuer, cfg.Expiration)
}
