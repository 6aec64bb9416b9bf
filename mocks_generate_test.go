package bitrie

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE . Storage
